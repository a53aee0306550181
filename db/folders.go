package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateFolder creates a folder and links the given photos into it.
// Photo IDs the user does not own are skipped. An empty photo list is valid:
// the folder is simply created empty.
func CreateFolder(userID, name string, photoIDs []string) (*Folder, error) {
	folder := &Folder{ID: NewID(), Name: name}
	createdAt := NowMs()

	err := Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO folders (id, user_id, name, created_at)
			VALUES (?, ?, ?, ?)
		`, folder.ID, userID, name, createdAt)
		if err != nil {
			return err
		}

		for _, photoID := range photoIDs {
			res, err := tx.Exec(`
				INSERT INTO folder_photos (folder_id, photo_id)
				SELECT ?, id FROM photos WHERE id = ? AND user_id = ?
				ON CONFLICT DO NOTHING
			`, folder.ID, photoID, userID)
			if err != nil {
				return err
			}
			if affected, _ := res.RowsAffected(); affected > 0 {
				folder.PhotoCount++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	folder.CreatedAt = MsToISO(createdAt)
	return folder, nil
}

// ListFolders returns the user's folders, newest first
func ListFolders(userID string) ([]Folder, error) {
	rows, err := GetDB().Query(`
		SELECT fo.id, fo.name, fo.created_at,
			(SELECT COUNT(*) FROM folder_photos fp WHERE fp.folder_id = fo.id)
		FROM folders fo
		WHERE fo.user_id = ?
		ORDER BY fo.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := []Folder{}
	for rows.Next() {
		var fo Folder
		var createdAt int64
		if err := rows.Scan(&fo.ID, &fo.Name, &createdAt, &fo.PhotoCount); err != nil {
			return nil, err
		}
		fo.CreatedAt = MsToISO(createdAt)
		folders = append(folders, fo)
	}
	return folders, rows.Err()
}

// GetFolder returns one folder with its photos, or nil when not found
func GetFolder(userID, folderID string) (*Folder, error) {
	var fo Folder
	var createdAt int64
	err := GetDB().QueryRow(`
		SELECT id, name, created_at FROM folders
		WHERE id = ? AND user_id = ?
	`, folderID, userID).Scan(&fo.ID, &fo.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	fo.CreatedAt = MsToISO(createdAt)

	rows, err := GetDB().Query(`
		SELECT `+photoColumns+` FROM photos p
		JOIN folder_photos fp ON fp.photo_id = p.id
		WHERE fp.folder_id = ?
		ORDER BY p.uploaded_at DESC
	`, fo.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fo.Photos = []Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		fo.Photos = append(fo.Photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range fo.Photos {
		if err := attachPhotoAssociations(&fo.Photos[i]); err != nil {
			return nil, err
		}
	}
	fo.PhotoCount = len(fo.Photos)
	return &fo, nil
}

// AddPhotosToFolder links photos into an existing folder and returns how many
// links were actually added. Returns sql.ErrNoRows when the folder is not
// owned by the user.
func AddPhotosToFolder(userID, folderID string, photoIDs []string) (int, error) {
	var added int
	err := Transaction(func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow(
			"SELECT COUNT(*) FROM folders WHERE id = ? AND user_id = ?",
			folderID, userID).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return sql.ErrNoRows
		}

		for _, photoID := range photoIDs {
			res, err := tx.Exec(`
				INSERT INTO folder_photos (folder_id, photo_id)
				SELECT ?, id FROM photos WHERE id = ? AND user_id = ?
				ON CONFLICT DO NOTHING
			`, folderID, photoID, userID)
			if err != nil {
				return err
			}
			if affected, _ := res.RowsAffected(); affected > 0 {
				added++
			}
		}
		return nil
	})
	return added, err
}

// RemovePhotosFromFolder unlinks photos from a folder without deleting them
func RemovePhotosFromFolder(userID, folderID string, photoIDs []string) (int, error) {
	if len(photoIDs) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(photoIDs)), ",")
	args := []any{folderID, userID}
	for _, id := range photoIDs {
		args = append(args, id)
	}
	res, err := GetDB().Exec(`
		DELETE FROM folder_photos
		WHERE folder_id = (SELECT id FROM folders WHERE id = ? AND user_id = ?)
		AND photo_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// DeleteFolder removes a folder. The photos themselves are untouched.
// Returns false when the folder is not owned by the user.
func DeleteFolder(userID, folderID string) (bool, error) {
	res, err := GetDB().Exec(
		"DELETE FROM folders WHERE id = ? AND user_id = ?", folderID, userID)
	if err != nil {
		return false, fmt.Errorf("delete folder: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}
