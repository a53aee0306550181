package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/drishyamitra/drishyamitra/config"
)

// PhotoFilter narrows a photo query. Zero value matches every photo the user owns.
type PhotoFilter struct {
	PersonName     string // case-insensitive substring match on person name
	PersonID       string
	Category       string
	Tag            string
	Search         string // matches filename, tag, category, or person name
	FavoritesOnly  bool
	DuplicatesOnly bool
	UnknownFaces   bool
	DateFrom       string // YYYY-MM-DD inclusive
	DateTo         string // YYYY-MM-DD inclusive
	RelativeTime   string // e.g. "last_7_days"
	Year           int
}

// IsZero reports whether the filter matches the whole library
func (f PhotoFilter) IsZero() bool {
	return f == PhotoFilter{}
}

// Describe renders the filter as a short human-readable summary,
// e.g. "person: Alice, tag: beach". Empty filter yields "all photos".
func (f PhotoFilter) Describe() string {
	var parts []string
	if f.PersonName != "" {
		parts = append(parts, "person: "+f.PersonName)
	}
	if f.Category != "" {
		parts = append(parts, "category: "+f.Category)
	}
	if f.Tag != "" {
		parts = append(parts, "tag: "+f.Tag)
	}
	if f.Search != "" {
		parts = append(parts, "search: "+f.Search)
	}
	if f.FavoritesOnly {
		parts = append(parts, "favorites")
	}
	if f.DuplicatesOnly {
		parts = append(parts, "duplicates")
	}
	if f.UnknownFaces {
		parts = append(parts, "unknown faces")
	}
	if f.RelativeTime != "" {
		parts = append(parts, strings.ReplaceAll(f.RelativeTime, "_", " "))
	}
	if f.Year != 0 {
		parts = append(parts, fmt.Sprintf("year %d", f.Year))
	}
	if f.DateFrom != "" || f.DateTo != "" {
		parts = append(parts, strings.TrimSpace(f.DateFrom+" .. "+f.DateTo))
	}
	if len(parts) == 0 {
		return "all photos"
	}
	return strings.Join(parts, ", ")
}

var relativeTimeDays = map[string]int{
	"today":         1,
	"yesterday":     2,
	"last_3_days":   3,
	"last_7_days":   7,
	"last_week":     7,
	"last_2_weeks":  14,
	"last_month":    30,
	"last_3_months": 90,
	"last_6_months": 180,
	"last_year":     365,
}

// buildPhotoWhere builds the WHERE clause and args for a filtered photo query.
// The photos table is aliased as p.
func buildPhotoWhere(userID string, f PhotoFilter) (string, []any) {
	clauses := []string{"p.user_id = ?"}
	args := []any{userID}

	if f.PersonID != "" {
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM faces fa WHERE fa.photo_id = p.id AND fa.person_id = ?
		)`)
		args = append(args, f.PersonID)
	}

	if f.PersonName != "" {
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM faces fa
			JOIN persons pe ON pe.id = fa.person_id
			WHERE fa.photo_id = p.id AND pe.name LIKE '%' || ? || '%'
		)`)
		args = append(args, f.PersonName)
	}

	if f.Category != "" {
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM photo_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.photo_id = p.id AND c.name LIKE '%' || ? || '%'
		)`)
		args = append(args, f.Category)
	}

	if f.Tag != "" {
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM photo_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE pt.photo_id = p.id AND t.name LIKE '%' || ? || '%'
		)`)
		args = append(args, f.Tag)
	}

	if f.Search != "" {
		clauses = append(clauses, `(
			p.original_filename LIKE '%' || ? || '%'
			OR EXISTS (
				SELECT 1 FROM photo_tags pt JOIN tags t ON t.id = pt.tag_id
				WHERE pt.photo_id = p.id AND t.name LIKE '%' || ? || '%'
			)
			OR EXISTS (
				SELECT 1 FROM photo_categories pc JOIN categories c ON c.id = pc.category_id
				WHERE pc.photo_id = p.id AND c.name LIKE '%' || ? || '%'
			)
			OR EXISTS (
				SELECT 1 FROM faces fa JOIN persons pe ON pe.id = fa.person_id
				WHERE fa.photo_id = p.id AND pe.name LIKE '%' || ? || '%'
			)
		)`)
		args = append(args, f.Search, f.Search, f.Search, f.Search)
	}

	if f.FavoritesOnly {
		clauses = append(clauses, "p.is_favorite = 1")
	}

	if f.DuplicatesOnly {
		clauses = append(clauses, `p.file_hash IN (
			SELECT file_hash FROM photos
			WHERE user_id = ? AND file_hash IS NOT NULL AND file_hash != ''
			GROUP BY file_hash HAVING COUNT(*) > 1
		)`)
		args = append(args, userID)
	}

	if f.UnknownFaces {
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM faces fa WHERE fa.photo_id = p.id AND fa.person_id IS NULL
		)`)
	}

	if f.DateFrom != "" {
		if t, err := time.Parse("2006-01-02", f.DateFrom); err == nil {
			clauses = append(clauses, "p.uploaded_at >= ?")
			args = append(args, t.UnixMilli())
		}
	}

	if f.DateTo != "" {
		if t, err := time.Parse("2006-01-02", f.DateTo); err == nil {
			clauses = append(clauses, "p.uploaded_at <= ?")
			args = append(args, t.Add(24*time.Hour-time.Millisecond).UnixMilli())
		}
	}

	if days, ok := relativeTimeDays[strings.ToLower(f.RelativeTime)]; ok {
		cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()
		clauses = append(clauses, "p.uploaded_at >= ?")
		args = append(args, cutoff)
	}

	if f.Year != 0 {
		start := time.Date(f.Year, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
		end := time.Date(f.Year+1, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli() - 1
		clauses = append(clauses, "p.uploaded_at BETWEEN ? AND ?")
		args = append(args, start, end)
	}

	return strings.Join(clauses, " AND "), args
}

const photoColumns = `p.id, p.user_id, p.filename, p.original_filename, p.filepath,
	p.mime_type, p.file_size, p.is_favorite, p.file_hash, p.uploaded_at`

// scanPhoto scans one photo row and fills derived display fields
func scanPhoto(rows interface{ Scan(...any) error }) (Photo, error) {
	var p Photo
	var isFavorite int
	var mimeType, fileHash sql.NullString
	var fileSize sql.NullInt64

	err := rows.Scan(
		&p.ID, &p.UserID, &p.Filename, &p.OriginalFilename, &p.Filepath,
		&mimeType, &fileSize, &isFavorite, &fileHash, &p.UploadedAt,
	)
	if err != nil {
		return p, err
	}

	p.MimeType = mimeType.String
	p.FileSize = fileSize.Int64
	p.IsFavorite = isFavorite == 1
	p.FileHash = fileHash.String
	p.Title = p.OriginalFilename
	p.URL = photoURL(p.UserID, p.Filename)
	p.UploadedAtISO = MsToISO(p.UploadedAt)
	p.Date = MsToDate(p.UploadedAt)
	return p, nil
}

// photoURL returns the serving URL for a stored photo file
func photoURL(userID, filename string) string {
	rel := "/uploads/" + userID + "/" + filename
	if base := config.Get().BackendURL; base != "" {
		return strings.TrimRight(base, "/") + rel
	}
	return rel
}

// SearchPhotos returns photos matching the filter, newest first, plus the
// total matched count (independent of limit/offset).
func SearchPhotos(userID string, f PhotoFilter, limit, offset int) ([]Photo, int, error) {
	where, args := buildPhotoWhere(userID, f)

	var total int
	countQuery := "SELECT COUNT(*) FROM photos p WHERE " + where
	if err := GetDB().QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count photos: %w", err)
	}

	query := "SELECT " + photoColumns + " FROM photos p WHERE " + where +
		" ORDER BY p.uploaded_at DESC"
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := GetDB().Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, 0, err
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range photos {
		if err := attachPhotoAssociations(&photos[i]); err != nil {
			return nil, 0, err
		}
	}

	return photos, total, nil
}

// SearchPhotoIDs resolves a filter to the matching photo identifiers, newest first
func SearchPhotoIDs(userID string, f PhotoFilter) ([]string, error) {
	where, args := buildPhotoWhere(userID, f)
	rows, err := GetDB().Query(
		"SELECT p.id FROM photos p WHERE "+where+" ORDER BY p.uploaded_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetPhoto returns a single photo owned by the user, with its faces attached
func GetPhoto(userID, photoID string) (*Photo, error) {
	row := GetDB().QueryRow(
		"SELECT "+photoColumns+" FROM photos p WHERE p.id = ? AND p.user_id = ?",
		photoID, userID)

	p, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := attachPhotoAssociations(&p); err != nil {
		return nil, err
	}
	faces, err := ListFacesForPhoto(p.ID)
	if err != nil {
		return nil, err
	}
	p.Faces = faces
	return &p, nil
}

// attachPhotoAssociations fills categories, tags, and the face count
func attachPhotoAssociations(p *Photo) error {
	p.Categories = []string{}
	p.Tags = []string{}

	rows, err := GetDB().Query(`
		SELECT c.name FROM photo_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.photo_id = ? ORDER BY c.name
	`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		p.Categories = append(p.Categories, name)
	}

	tagRows, err := GetDB().Query(`
		SELECT t.name FROM photo_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.photo_id = ? ORDER BY t.name
	`, p.ID)
	if err != nil {
		return err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var name string
		if err := tagRows.Scan(&name); err != nil {
			return err
		}
		p.Tags = append(p.Tags, name)
	}

	return GetDB().QueryRow(
		"SELECT COUNT(*) FROM faces WHERE photo_id = ?", p.ID,
	).Scan(&p.FacesCount)
}

// CreatePhoto inserts a photo record and links its categories and tags.
// Unknown categories are ignored; tags are created on first use.
func CreatePhoto(p *Photo, categories, tags []string) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.UploadedAt == 0 {
		p.UploadedAt = NowMs()
	}

	err := Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO photos (id, user_id, filename, original_filename, filepath,
				mime_type, file_size, is_favorite, file_hash, uploaded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		`, p.ID, p.UserID, p.Filename, p.OriginalFilename, p.Filepath,
			p.MimeType, p.FileSize, p.FileHash, p.UploadedAt)
		if err != nil {
			return err
		}

		for _, name := range categories {
			var catID string
			err := tx.QueryRow("SELECT id FROM categories WHERE name = ?", name).Scan(&catID)
			if err == sql.ErrNoRows {
				continue
			}
			if err != nil {
				return err
			}
			if _, err := tx.Exec(`
				INSERT INTO photo_categories (photo_id, category_id) VALUES (?, ?)
				ON CONFLICT DO NOTHING
			`, p.ID, catID); err != nil {
				return err
			}
		}

		for _, name := range tags {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			var tagID string
			err := tx.QueryRow("SELECT id FROM tags WHERE name = ?", name).Scan(&tagID)
			if err == sql.ErrNoRows {
				tagID = NewID()
				if _, err := tx.Exec("INSERT INTO tags (id, name) VALUES (?, ?)", tagID, name); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			if _, err := tx.Exec(`
				INSERT INTO photo_tags (photo_id, tag_id) VALUES (?, ?)
				ON CONFLICT DO NOTHING
			`, p.ID, tagID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("create photo: %w", err)
	}

	p.URL = photoURL(p.UserID, p.Filename)
	p.Title = p.OriginalFilename
	p.UploadedAtISO = MsToISO(p.UploadedAt)
	p.Date = MsToDate(p.UploadedAt)
	return attachPhotoAssociations(p)
}

// ToggleFavorite flips a photo's favorite flag. Returns nil when not found.
func ToggleFavorite(userID, photoID string) (*Photo, error) {
	res, err := GetDB().Exec(`
		UPDATE photos SET is_favorite = 1 - is_favorite
		WHERE id = ? AND user_id = ?
	`, photoID, userID)
	if err != nil {
		return nil, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, nil
	}
	return GetPhoto(userID, photoID)
}

// DeletedPhoto identifies a removed photo row and the disk file to clean up
type DeletedPhoto struct {
	ID       string
	Filepath string
}

// DeletePhotosBatch removes the user's photos among ids and returns the rows
// actually deleted. IDs that no longer exist are skipped silently, so the
// returned count may be less than requested. Persons left without any face
// are removed as well.
func DeletePhotosBatch(userID string, ids []string) ([]DeletedPhoto, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := GetDB().Query(
		"SELECT id, filepath FROM photos WHERE user_id = ? AND id IN ("+placeholders+")",
		args...)
	if err != nil {
		return nil, err
	}
	var deleted []DeletedPhoto
	for rows.Next() {
		var d DeletedPhoto
		if err := rows.Scan(&d.ID, &d.Filepath); err != nil {
			rows.Close()
			return nil, err
		}
		deleted = append(deleted, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, nil
	}

	err = Transaction(func(tx *sql.Tx) error {
		for _, d := range deleted {
			// Association rows and faces go via ON DELETE CASCADE
			if _, err := tx.Exec("DELETE FROM photos WHERE id = ?", d.ID); err != nil {
				return err
			}
		}

		// Remove persons that lost their last face
		_, err := tx.Exec(`
			DELETE FROM persons
			WHERE user_id = ?
			AND NOT EXISTS (SELECT 1 FROM faces fa WHERE fa.person_id = persons.id)
		`, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("delete photos: %w", err)
	}

	return deleted, nil
}

// DuplicateGroup is a set of photos sharing one content hash
type DuplicateGroup struct {
	Hash   string  `json:"hash"`
	Photos []Photo `json:"photos"`
}

// ListDuplicateGroups returns groups of photos whose content hash appears
// more than once in the user's library, oldest photo first within each group.
func ListDuplicateGroups(userID string) ([]DuplicateGroup, error) {
	rows, err := GetDB().Query(`
		SELECT file_hash FROM photos
		WHERE user_id = ? AND file_hash IS NOT NULL AND file_hash != ''
		GROUP BY file_hash HAVING COUNT(*) > 1
		ORDER BY file_hash
	`, userID)
	if err != nil {
		return nil, err
	}
	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			rows.Close()
			return nil, err
		}
		hashes = append(hashes, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var groups []DuplicateGroup
	for _, hash := range hashes {
		photoRows, err := GetDB().Query(
			"SELECT "+photoColumns+" FROM photos p WHERE p.user_id = ? AND p.file_hash = ? ORDER BY p.uploaded_at ASC",
			userID, hash)
		if err != nil {
			return nil, err
		}
		group := DuplicateGroup{Hash: hash}
		for photoRows.Next() {
			p, err := scanPhoto(photoRows)
			if err != nil {
				photoRows.Close()
				return nil, err
			}
			if len(hash) >= 8 {
				p.DuplicateGroup = hash[:8]
			} else {
				p.DuplicateGroup = hash
			}
			group.Photos = append(group.Photos, p)
		}
		photoRows.Close()
		if err := photoRows.Err(); err != nil {
			return nil, err
		}
		for i := range group.Photos {
			if err := attachPhotoAssociations(&group.Photos[i]); err != nil {
				return nil, err
			}
		}
		groups = append(groups, group)
	}

	return groups, nil
}

// FindPhotosByHash returns the user's photos with the given content hash
func FindPhotosByHash(userID, hash string) ([]Photo, error) {
	rows, err := GetDB().Query(
		"SELECT "+photoColumns+" FROM photos p WHERE p.user_id = ? AND p.file_hash = ? ORDER BY p.uploaded_at ASC",
		userID, hash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range photos {
		if err := attachPhotoAssociations(&photos[i]); err != nil {
			return nil, err
		}
	}
	return photos, nil
}
