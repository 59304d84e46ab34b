package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"rastreio-produtos/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// DB encapsula a conexão com o banco de dados
type DB struct {
	conn *sql.DB
}

// New cria uma nova instância do banco de dados
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	db := &DB{conn: conn}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Println("Banco de dados inicializado com sucesso")
	return db, nil
}

// Close fecha a conexão com o banco de dados
func (db *DB) Close() error {
	return db.conn.Close()
}

// init cria as tabelas necessárias
func (db *DB) init() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tracked_products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			url TEXT NOT NULL,
			store TEXT NOT NULL,
			size TEXT NOT NULL DEFAULT 'todos',
			last_price REAL NOT NULL DEFAULT 0,
			product_name TEXT,
			was_available BOOLEAN NOT NULL DEFAULT 1,
			last_check DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS price_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id INTEGER NOT NULL,
			price REAL NOT NULL,
			checked_at DATETIME NOT NULL,
			FOREIGN KEY (product_id) REFERENCES tracked_products (id)
		)`,
		`CREATE TABLE IF NOT EXISTS price_thresholds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			threshold_price REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (product_id) REFERENCES tracked_products (id)
		)`,
		`CREATE TABLE IF NOT EXISTS supported_stores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			base_url TEXT NOT NULL,
			selectors TEXT NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS store_products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_name TEXT NOT NULL,
			store_id INTEGER NOT NULL,
			store_url TEXT NOT NULL,
			current_price REAL NOT NULL,
			in_stock BOOLEAN NOT NULL DEFAULT 0,
			last_check DATETIME,
			UNIQUE (product_name, store_id),
			FOREIGN KEY (store_id) REFERENCES supported_stores (id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id INTEGER PRIMARY KEY,
			request_count INTEGER NOT NULL DEFAULT 0,
			last_request DATETIME
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return err
		}
	}

	return db.seedStores()
}

// seedStores registra as lojas suportadas com seus seletores padrão
func (db *DB) seedStores() error {
	stores := []struct {
		name      string
		baseURL   string
		selectors string
	}{
		{"Trendyol", "trendyol.com", `{"name": "h1.pr-new-br, h1.product-name", "price": ".prc-dsc, .prc-slg, .price-box", "size": "div.sp-itm:not(.so), div.size-variant-wrapper:not(.disabled), div.variant-wrapper:not(.disabled)"}`},
		{"Bershka", "bershka.com", `{"name": "h1.product-title", "price": ".current-price-elem", "size": ".size-selector-option:not(.disabled)"}`},
		{"Zara", "zara.com", `{"name": "h1.product-detail-info__header-name", "price": ".price-elem", "size": ".size-pill:not(.disabled)"}`},
	}

	for _, s := range stores {
		_, err := db.conn.Exec(
			"INSERT OR IGNORE INTO supported_stores (name, base_url, selectors) VALUES (?, ?, ?)",
			s.name, s.baseURL, s.selectors,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// AddTrackedProduct adiciona um novo produto rastreado e retorna seu ID
func (db *DB) AddTrackedProduct(userID int64, p models.Product) (int64, error) {
	res, err := db.conn.Exec(
		`INSERT INTO tracked_products (user_id, url, store, size, last_price, product_name, was_available, last_check)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, p.URL, p.Store, p.Size, p.LastPrice, p.Name, p.WasAvailable, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetAllTrackedProducts retorna todos os produtos rastreados
func (db *DB) GetAllTrackedProducts() ([]models.Product, error) {
	return db.queryProducts("SELECT id, user_id, url, store, size, last_price, product_name, was_available, last_check, created_at FROM tracked_products")
}

// GetUserProducts retorna os produtos rastreados por um usuário
func (db *DB) GetUserProducts(userID int64) ([]models.Product, error) {
	return db.queryProducts(
		"SELECT id, user_id, url, store, size, last_price, product_name, was_available, last_check, created_at FROM tracked_products WHERE user_id = ? ORDER BY created_at DESC",
		userID,
	)
}

func (db *DB) queryProducts(query string, args ...any) ([]models.Product, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	var name sql.NullString
	var lastCheck sql.NullTime
	err := row.Scan(&p.ID, &p.UserID, &p.URL, &p.Store, &p.Size, &p.LastPrice, &name, &p.WasAvailable, &lastCheck, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	if name.Valid {
		p.Name = name.String
	}
	if lastCheck.Valid {
		p.LastCheck = lastCheck.Time
	}
	return p, nil
}

// GetProductByID retorna um produto pelo ID
func (db *DB) GetProductByID(id int64) (*models.Product, error) {
	row := db.conn.QueryRow(
		"SELECT id, user_id, url, store, size, last_price, product_name, was_available, last_check, created_at FROM tracked_products WHERE id = ?",
		id,
	)
	p, err := scanProduct(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct remove um produto rastreado de um usuário.
// Retorna false se o produto não existe ou pertence a outro usuário.
func (db *DB) DeleteProduct(userID, productID int64) (bool, error) {
	res, err := db.conn.Exec(
		"DELETE FROM tracked_products WHERE id = ? AND user_id = ?",
		productID, userID,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		// Limpar histórico e limites órfãos
		db.conn.Exec("DELETE FROM price_history WHERE product_id = ?", productID)
		db.conn.Exec("DELETE FROM price_thresholds WHERE product_id = ?", productID)
	}
	return affected > 0, nil
}

// UpdateProductPrice atualiza o preço e a disponibilidade de um produto e
// registra a leitura no histórico, em uma única transação
func (db *DB) UpdateProductPrice(productID int64, price float64, available bool) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	if _, err := tx.Exec(
		"UPDATE tracked_products SET last_price = ?, was_available = ?, last_check = ? WHERE id = ?",
		price, available, now, productID,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(
		"INSERT INTO price_history (product_id, price, checked_at) VALUES (?, ?, ?)",
		productID, price, now,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// GetPriceHistory retorna o histórico de preços de um produto em ordem cronológica
func (db *DB) GetPriceHistory(productID int64) ([]models.PriceHistoryEntry, error) {
	rows, err := db.conn.Query(
		"SELECT product_id, price, checked_at FROM price_history WHERE product_id = ? ORDER BY checked_at ASC",
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.PriceHistoryEntry
	for rows.Next() {
		var h models.PriceHistoryEntry
		if err := rows.Scan(&h.ProductID, &h.Price, &h.CheckedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// AddThreshold adiciona um limite de preço para um produto
func (db *DB) AddThreshold(userID, productID int64, price float64) error {
	if price <= 0 {
		return fmt.Errorf("limite de preço deve ser maior que zero")
	}
	_, err := db.conn.Exec(
		"INSERT INTO price_thresholds (product_id, user_id, threshold_price) VALUES (?, ?, ?)",
		productID, userID, price,
	)
	return err
}

// GetProductThresholds retorna os limites de preço configurados para um produto
func (db *DB) GetProductThresholds(productID int64) ([]models.PriceThreshold, error) {
	rows, err := db.conn.Query(
		"SELECT id, product_id, user_id, threshold_price, created_at FROM price_thresholds WHERE product_id = ?",
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var thresholds []models.PriceThreshold
	for rows.Next() {
		var t models.PriceThreshold
		if err := rows.Scan(&t.ID, &t.ProductID, &t.UserID, &t.Price, &t.CreatedAt); err != nil {
			return nil, err
		}
		thresholds = append(thresholds, t)
	}
	return thresholds, rows.Err()
}

// GetEnabledStores retorna as lojas habilitadas
func (db *DB) GetEnabledStores() ([]models.StoreConfig, error) {
	rows, err := db.conn.Query(
		"SELECT id, name, base_url, selectors, enabled FROM supported_stores WHERE enabled = 1 ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []models.StoreConfig
	for rows.Next() {
		var s models.StoreConfig
		if err := rows.Scan(&s.ID, &s.Name, &s.BaseURL, &s.Selectors, &s.Enabled); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// SetStoreEnabled habilita ou desabilita uma loja
func (db *DB) SetStoreEnabled(storeName string, enabled bool) error {
	_, err := db.conn.Exec(
		"UPDATE supported_stores SET enabled = ? WHERE name = ?",
		enabled, storeName,
	)
	return err
}

// UpsertStorePrice registra a última leitura de preço de um produto em uma loja
func (db *DB) UpsertStorePrice(productName string, storeID int64, url string, price float64, inStock bool) error {
	_, err := db.conn.Exec(
		`INSERT INTO store_products (product_name, store_id, store_url, current_price, in_stock, last_check)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (product_name, store_id) DO UPDATE SET
			store_url = excluded.store_url,
			current_price = excluded.current_price,
			in_stock = excluded.in_stock,
			last_check = excluded.last_check`,
		productName, storeID, url, price, inStock, time.Now(),
	)
	return err
}

// GetLatestPrice retorna a última leitura de preço de um produto em uma loja.
// Retorna nil quando não há leitura registrada.
func (db *DB) GetLatestPrice(productName string, storeID int64) (*models.StorePrice, error) {
	var sp models.StorePrice
	err := db.conn.QueryRow(
		"SELECT current_price, in_stock, store_url FROM store_products WHERE product_name = ? AND store_id = ?",
		productName, storeID,
	).Scan(&sp.Price, &sp.InStock, &sp.URL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// UpdateUserStats registra uma requisição do usuário para controle de taxa
func (db *DB) UpdateUserStats(userID int64) error {
	res, err := db.conn.Exec(
		`UPDATE user_stats
		 SET request_count = CASE
			WHEN last_request < datetime('now', '-1 minute') THEN 1
			ELSE request_count + 1
		 END,
		 last_request = datetime('now')
		 WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		_, err = db.conn.Exec(
			"INSERT INTO user_stats (user_id, request_count, last_request) VALUES (?, 1, datetime('now'))",
			userID,
		)
	}
	return err
}

// GetUserRequestCount retorna quantas requisições o usuário fez na janela informada
func (db *DB) GetUserRequestCount(userID int64, window time.Duration) (int, error) {
	var count int
	err := db.conn.QueryRow(
		"SELECT request_count FROM user_stats WHERE user_id = ? AND last_request > datetime('now', ?)",
		userID, fmt.Sprintf("-%d seconds", int(window.Seconds())),
	).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}
