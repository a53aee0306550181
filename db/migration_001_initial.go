package db

import "database/sql"

func init() {
	RegisterMigration(Migration{
		Version:     1,
		Description: "initial schema: users, photos, faces, persons, folders, categories, tags",
		Up:          migration001Up,
	})
}

func migration001Up(db *sql.DB) error {
	schema := `
	CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE photos (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		filename TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		filepath TEXT NOT NULL,
		mime_type TEXT,
		file_size INTEGER,
		is_favorite INTEGER NOT NULL DEFAULT 0,
		file_hash TEXT,
		uploaded_at INTEGER NOT NULL
	);
	CREATE INDEX idx_photos_user ON photos(user_id);
	CREATE INDEX idx_photos_hash ON photos(file_hash);
	CREATE INDEX idx_photos_uploaded ON photos(uploaded_at);

	CREATE TABLE persons (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		avatar_path TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX idx_persons_user ON persons(user_id);

	CREATE TABLE faces (
		id TEXT PRIMARY KEY,
		photo_id TEXT NOT NULL REFERENCES photos(id) ON DELETE CASCADE,
		person_id TEXT REFERENCES persons(id) ON DELETE SET NULL,
		x REAL NOT NULL DEFAULT 0,
		y REAL NOT NULL DEFAULT 0,
		width REAL NOT NULL DEFAULT 0,
		height REAL NOT NULL DEFAULT 0,
		confidence REAL,
		embedding TEXT,
		embedding_model TEXT
	);
	CREATE INDEX idx_faces_photo ON faces(photo_id);
	CREATE INDEX idx_faces_person ON faces(person_id);

	CREATE TABLE folders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX idx_folders_user ON folders(user_id);

	CREATE TABLE categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE tags (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE photo_categories (
		photo_id TEXT NOT NULL REFERENCES photos(id) ON DELETE CASCADE,
		category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		PRIMARY KEY (photo_id, category_id)
	);

	CREATE TABLE photo_tags (
		photo_id TEXT NOT NULL REFERENCES photos(id) ON DELETE CASCADE,
		tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (photo_id, tag_id)
	);

	CREATE TABLE folder_photos (
		folder_id TEXT NOT NULL REFERENCES folders(id) ON DELETE CASCADE,
		photo_id TEXT NOT NULL REFERENCES photos(id) ON DELETE CASCADE,
		PRIMARY KEY (folder_id, photo_id)
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return err
	}

	return seedCategories(db)
}

// DefaultCategories is the fixed category set the frontend offers at upload time.
var DefaultCategories = []string{
	"People", "Nature", "Animals", "Objects",
	"Travel", "Food", "Documents", "Other",
}

func seedCategories(db *sql.DB) error {
	for _, name := range DefaultCategories {
		_, err := db.Exec(`
			INSERT INTO categories (id, name) VALUES (?, ?)
			ON CONFLICT(name) DO NOTHING
		`, NewID(), name)
		if err != nil {
			return err
		}
	}
	return nil
}
