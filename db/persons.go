package db

import (
	"database/sql"
	"fmt"
)

// ListPersons returns the user's persons that have at least one linked face,
// most photos first. The avatar falls back to the first linked photo's URL
// when no explicit avatar was set.
func ListPersons(userID string) ([]Person, error) {
	rows, err := GetDB().Query(`
		SELECT pe.id, pe.name, pe.avatar_path, pe.created_at,
			COUNT(DISTINCT f.photo_id) AS photo_count
		FROM persons pe
		JOIN faces f ON f.person_id = pe.id
		WHERE pe.user_id = ?
		GROUP BY pe.id
		ORDER BY photo_count DESC, pe.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	persons := []Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range persons {
		if persons[i].Avatar == "" {
			avatar, err := firstPhotoURLForPerson(userID, persons[i].ID)
			if err != nil {
				return nil, err
			}
			persons[i].Avatar = avatar
		}
	}
	return persons, nil
}

func scanPerson(rows interface{ Scan(...any) error }) (Person, error) {
	var p Person
	var avatar sql.NullString
	var createdAt int64
	if err := rows.Scan(&p.ID, &p.Name, &avatar, &createdAt, &p.PhotoCount); err != nil {
		return p, err
	}
	p.Avatar = avatar.String
	p.CreatedAt = MsToISO(createdAt)
	return p, nil
}

func firstPhotoURLForPerson(userID, personID string) (string, error) {
	var filename string
	err := GetDB().QueryRow(`
		SELECT p.filename FROM photos p
		JOIN faces f ON f.photo_id = p.id
		WHERE f.person_id = ? AND p.user_id = ?
		ORDER BY p.uploaded_at DESC LIMIT 1
	`, personID, userID).Scan(&filename)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return photoURL(userID, filename), nil
}

// GetPerson returns one person owned by the user, or nil when not found
func GetPerson(userID, personID string) (*Person, error) {
	row := GetDB().QueryRow(`
		SELECT pe.id, pe.name, pe.avatar_path, pe.created_at,
			(SELECT COUNT(DISTINCT f.photo_id) FROM faces f WHERE f.person_id = pe.id)
		FROM persons pe
		WHERE pe.id = ? AND pe.user_id = ?
	`, personID, userID)

	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Avatar == "" {
		p.Avatar, err = firstPhotoURLForPerson(userID, p.ID)
		if err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// FindPersonByName matches a person by case-insensitive substring.
// Exact matches win over substring matches.
func FindPersonByName(userID, name string) (*Person, error) {
	row := GetDB().QueryRow(`
		SELECT pe.id, pe.name, pe.avatar_path, pe.created_at,
			(SELECT COUNT(DISTINCT f.photo_id) FROM faces f WHERE f.person_id = pe.id)
		FROM persons pe
		WHERE pe.user_id = ? AND pe.name LIKE '%' || ? || '%'
		ORDER BY (pe.name = ? COLLATE NOCASE) DESC, LENGTH(pe.name)
		LIMIT 1
	`, userID, name, name)

	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RenamePerson updates a person's name. Returns false when not found.
func RenamePerson(userID, personID, name string) (bool, error) {
	res, err := GetDB().Exec(
		"UPDATE persons SET name = ? WHERE id = ? AND user_id = ?",
		name, personID, userID)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// DeletePerson removes a person. Their faces stay on the photos but go back
// to unassigned via ON DELETE SET NULL. Returns false when not found.
func DeletePerson(userID, personID string) (bool, error) {
	res, err := GetDB().Exec(
		"DELETE FROM persons WHERE id = ? AND user_id = ?", personID, userID)
	if err != nil {
		return false, fmt.Errorf("delete person: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}
