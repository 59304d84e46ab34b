package models

import (
	"strings"
	"time"
)

// SizeAll é o valor sentinela para acompanhar todos os tamanhos de um produto
const SizeAll = "todos"

// Product representa um produto sendo rastreado por um usuário
type Product struct {
	ID           int64
	UserID       int64
	URL          string
	Store        string
	Size         string // tamanho acompanhado, ou SizeAll
	LastPrice    float64
	Name         string
	WasAvailable bool
	LastCheck    time.Time
	CreatedAt    time.Time
}

// WantsAllSizes indica se o produto acompanha qualquer tamanho
func (p Product) WantsAllSizes() bool {
	return strings.EqualFold(p.Size, SizeAll) || p.Size == ""
}

// PriceHistoryEntry é um registro do histórico de preços de um produto
type PriceHistoryEntry struct {
	ProductID int64
	Price     float64
	CheckedAt time.Time
}

// PriceThreshold é um alerta de preço configurado por um usuário.
// A notificação dispara quando o preço atual fica igual ou abaixo do limite.
type PriceThreshold struct {
	ID        int64
	ProductID int64
	UserID    int64
	Price     float64
	CreatedAt time.Time
}

// StoreConfig descreve uma loja suportada e seus seletores de página
type StoreConfig struct {
	ID        int64
	Name      string
	BaseURL   string
	Selectors string // JSON com seletores por campo semântico ("price", "size")
	Enabled   bool
}
