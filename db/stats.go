package db

// LibraryStats is the aggregate snapshot behind the dashboard and the
// assistant's stats answers.
type LibraryStats struct {
	TotalPhotos     int         `json:"total_photos"`
	Favorites       int         `json:"favorites"`
	Persons         int         `json:"persons"`
	Folders         int         `json:"folders"`
	DuplicateGroups int         `json:"duplicate_groups"`
	DuplicatePhotos int         `json:"duplicate_photos"`
	UnknownFaces    int         `json:"unknown_faces"`
	StorageBytes    int64       `json:"storage_bytes"`
	Categories      []NameCount `json:"categories"`
	Tags            []NameCount `json:"tags"`
}

// GetLibraryStats computes the user's library aggregates in one pass
func GetLibraryStats(userID string) (*LibraryStats, error) {
	s := &LibraryStats{Categories: []NameCount{}, Tags: []NameCount{}}
	conn := GetDB()

	err := conn.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(is_favorite), 0),
			COALESCE(SUM(file_size), 0)
		FROM photos WHERE user_id = ?
	`, userID).Scan(&s.TotalPhotos, &s.Favorites, &s.StorageBytes)
	if err != nil {
		return nil, err
	}

	err = conn.QueryRow(`
		SELECT COUNT(*) FROM persons pe
		WHERE pe.user_id = ?
		AND EXISTS (SELECT 1 FROM faces f WHERE f.person_id = pe.id)
	`, userID).Scan(&s.Persons)
	if err != nil {
		return nil, err
	}

	err = conn.QueryRow(
		"SELECT COUNT(*) FROM folders WHERE user_id = ?", userID,
	).Scan(&s.Folders)
	if err != nil {
		return nil, err
	}

	// groups = distinct hashes appearing more than once,
	// photos = total members of those groups
	err = conn.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(n), 0) FROM (
			SELECT COUNT(*) AS n FROM photos
			WHERE user_id = ? AND file_hash IS NOT NULL AND file_hash != ''
			GROUP BY file_hash HAVING COUNT(*) > 1
		)
	`, userID).Scan(&s.DuplicateGroups, &s.DuplicatePhotos)
	if err != nil {
		return nil, err
	}

	s.UnknownFaces, err = CountUnknownFaces(userID)
	if err != nil {
		return nil, err
	}

	s.Categories, err = countByName(`
		SELECT c.name, COUNT(*) FROM photo_categories pc
		JOIN categories c ON c.id = pc.category_id
		JOIN photos p ON p.id = pc.photo_id
		WHERE p.user_id = ?
		GROUP BY c.name ORDER BY COUNT(*) DESC, c.name
	`, userID)
	if err != nil {
		return nil, err
	}

	s.Tags, err = countByName(`
		SELECT t.name, COUNT(*) FROM photo_tags pt
		JOIN tags t ON t.id = pt.tag_id
		JOIN photos p ON p.id = pt.photo_id
		WHERE p.user_id = ?
		GROUP BY t.name ORDER BY COUNT(*) DESC, t.name
	`, userID)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func countByName(query string, args ...any) ([]NameCount, error) {
	rows, err := GetDB().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []NameCount{}
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}

// ListCategories returns the fixed category set in name order
func ListCategories() ([]Category, error) {
	rows, err := GetDB().Query("SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListTagsForUser returns the tags used on the user's photos with usage counts
func ListTagsForUser(userID string) ([]NameCount, error) {
	return countByName(`
		SELECT t.name, COUNT(*) FROM photo_tags pt
		JOIN tags t ON t.id = pt.tag_id
		JOIN photos p ON p.id = pt.photo_id
		WHERE p.user_id = ?
		GROUP BY t.name ORDER BY COUNT(*) DESC, t.name
	`, userID)
}
