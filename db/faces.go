package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// FaceEmbedding pairs a stored face with its decoded embedding vector
type FaceEmbedding struct {
	FaceID   string
	PersonID string
	Vector   []float64
}

// scanFace scans one face row joined with the owning person's name
func scanFace(rows interface{ Scan(...any) error }) (Face, error) {
	var f Face
	var personID, personName, embedding, embeddingModel sql.NullString
	var confidence sql.NullFloat64

	err := rows.Scan(
		&f.ID, &f.PhotoID, &personID,
		&f.X, &f.Y, &f.Width, &f.Height,
		&confidence, &embedding, &embeddingModel, &personName,
	)
	if err != nil {
		return f, err
	}

	f.PersonID = personID.String
	f.PersonName = personName.String
	f.Confidence = confidence.Float64
	f.HasEmbedding = embedding.Valid && embedding.String != ""
	f.EmbeddingModel = embeddingModel.String
	return f, nil
}

const faceColumns = `f.id, f.photo_id, f.person_id,
	f.x, f.y, f.width, f.height,
	f.confidence, f.embedding, f.embedding_model, pe.name`

// ListFacesForPhoto returns the faces detected in one photo
func ListFacesForPhoto(photoID string) ([]Face, error) {
	rows, err := GetDB().Query(`
		SELECT `+faceColumns+`
		FROM faces f
		LEFT JOIN persons pe ON pe.id = f.person_id
		WHERE f.photo_id = ?
		ORDER BY f.x
	`, photoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	faces := []Face{}
	for rows.Next() {
		f, err := scanFace(rows)
		if err != nil {
			return nil, err
		}
		faces = append(faces, f)
	}
	return faces, rows.Err()
}

// CreateFace stores a detected face. The embedding is kept as a JSON array
// so the match pass can reload it without a separate vector store.
func CreateFace(f *Face, embedding []float64, embeddingModel string) error {
	if f.ID == "" {
		f.ID = NewID()
	}

	var embeddingJSON any
	if len(embedding) > 0 {
		raw, err := json.Marshal(embedding)
		if err != nil {
			return fmt.Errorf("encode embedding: %w", err)
		}
		embeddingJSON = string(raw)
		f.HasEmbedding = true
		f.EmbeddingModel = embeddingModel
	}

	var personID any
	if f.PersonID != "" {
		personID = f.PersonID
	}

	_, err := GetDB().Exec(`
		INSERT INTO faces (id, photo_id, person_id, x, y, width, height,
			confidence, embedding, embedding_model)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.PhotoID, personID, f.X, f.Y, f.Width, f.Height,
		f.Confidence, embeddingJSON, f.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("create face: %w", err)
	}
	return nil
}

// AssignFaceToPerson links a face to a person, creating the person when
// personName has no existing case-insensitive match for this user.
func AssignFaceToPerson(userID, faceID, personName string) (*Person, error) {
	var person *Person
	err := Transaction(func(tx *sql.Tx) error {
		var owned int
		err := tx.QueryRow(`
			SELECT COUNT(*) FROM faces f
			JOIN photos p ON p.id = f.photo_id
			WHERE f.id = ? AND p.user_id = ?
		`, faceID, userID).Scan(&owned)
		if err != nil {
			return err
		}
		if owned == 0 {
			return sql.ErrNoRows
		}

		var id, name string
		err = tx.QueryRow(`
			SELECT id, name FROM persons
			WHERE user_id = ? AND name = ? COLLATE NOCASE
		`, userID, personName).Scan(&id, &name)
		if err == sql.ErrNoRows {
			id, name = NewID(), personName
			_, err = tx.Exec(`
				INSERT INTO persons (id, user_id, name, created_at)
				VALUES (?, ?, ?, ?)
			`, id, userID, name, NowMs())
		}
		if err != nil {
			return err
		}

		if _, err := tx.Exec("UPDATE faces SET person_id = ? WHERE id = ?", id, faceID); err != nil {
			return err
		}
		person = &Person{ID: id, Name: name}
		return nil
	})
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("assign face: %w", err)
	}
	return person, nil
}

// UnassignFace detaches a face from its person. Persons left with no faces
// are removed so they stop appearing in the people view.
func UnassignFace(userID, faceID string) error {
	return Transaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE faces SET person_id = NULL
			WHERE id = ? AND photo_id IN (SELECT id FROM photos WHERE user_id = ?)
		`, faceID, userID)
		if err != nil {
			return err
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return sql.ErrNoRows
		}

		_, err = tx.Exec(`
			DELETE FROM persons
			WHERE user_id = ?
			AND NOT EXISTS (SELECT 1 FROM faces fa WHERE fa.person_id = persons.id)
		`, userID)
		return err
	})
}

// ListNamedEmbeddings returns every embedding belonging to a named person in
// the user's library. Used to match freshly detected faces against known people.
func ListNamedEmbeddings(userID string) ([]FaceEmbedding, error) {
	rows, err := GetDB().Query(`
		SELECT f.id, f.person_id, f.embedding
		FROM faces f
		JOIN photos p ON p.id = f.photo_id
		WHERE p.user_id = ? AND f.person_id IS NOT NULL
		AND f.embedding IS NOT NULL AND f.embedding != ''
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FaceEmbedding
	for rows.Next() {
		var e FaceEmbedding
		var raw string
		if err := rows.Scan(&e.FaceID, &e.PersonID, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &e.Vector); err != nil {
			// Skip rows with a corrupt embedding instead of failing the match pass
			continue
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountUnknownFaces counts detected faces not yet linked to a person
func CountUnknownFaces(userID string) (int, error) {
	var n int
	err := GetDB().QueryRow(`
		SELECT COUNT(*) FROM faces f
		JOIN photos p ON p.id = f.photo_id
		WHERE p.user_id = ? AND f.person_id IS NULL
	`, userID).Scan(&n)
	return n, err
}
