package stubserver

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"golang.org/x/crypto/bcrypt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	is_admin INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS tokens (
	token TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS catalog_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tipo TEXT NOT NULL,
	nombre TEXT NOT NULL,
	UNIQUE(tipo, nombre)
);

CREATE TABLE IF NOT EXISTS empleados (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	nombre TEXT NOT NULL,
	area_id INTEGER NOT NULL,
	cargo_id INTEGER NOT NULL,
	empresa_id INTEGER NOT NULL,
	ciudad_id INTEGER NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	fecha_retiro TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS productos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	marca TEXT NOT NULL,
	referencia TEXT NOT NULL DEFAULT '',
	serial TEXT NOT NULL DEFAULT '',
	procesador TEXT NOT NULL DEFAULT '',
	ram TEXT NOT NULL DEFAULT '',
	disco_duro TEXT NOT NULL DEFAULT '',
	tipo_producto_id INTEGER NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	fecha_retiro TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS inventory (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	empleado_id INTEGER NOT NULL REFERENCES empleados(id),
	producto_id INTEGER NOT NULL REFERENCES productos(id),
	sede_id INTEGER,
	quien_entrega TEXT NOT NULL DEFAULT '',
	observacion TEXT NOT NULL DEFAULT '',
	fecha_entrega TEXT NOT NULL DEFAULT (date('now')),
	fecha_retiro TEXT NOT NULL DEFAULT '',
	is_active INTEGER NOT NULL DEFAULT 1
);
`

// OpenDB opens (or creates) the sqlite database at path and applies the
// schema. Use ":memory:" in tests.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return db, nil
}

// SeedAdmin ensures an administrator account exists so a fresh stub is
// immediately usable.
func SeedAdmin(db *sql.DB, username, password string) error {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT INTO users (username, full_name, password_hash, is_admin) VALUES (?, ?, ?, 1)`,
		username, "Administrador", string(hash))
	return err
}
