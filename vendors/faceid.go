package vendors

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/drishyamitra/drishyamitra/config"
	"github.com/drishyamitra/drishyamitra/log"
)

var (
	faceClient     *FaceClient
	faceClientOnce sync.Once
)

// FaceClient wraps the external face recognition service
type FaceClient struct {
	baseURL    string
	apiKey     string
	minConf    float64
	httpClient *http.Client
}

// DetectedFace is one face found in an image. Coordinates are pixels in the
// original image. The embedding is a unit-length vector usable for matching.
type DetectedFace struct {
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Confidence float64   `json:"confidence"`
	Embedding  []float64 `json:"embedding"`
	Model      string    `json:"model"`
}

type faceDetectionResponse struct {
	Faces []DetectedFace `json:"faces"`
	Model string         `json:"model"`
	Error string         `json:"error,omitempty"`
}

// GetFaceClient returns the singleton face recognition client.
// Returns nil when FACE_API_BASE_URL is not configured; methods on a nil
// receiver are no-ops so uploads still work without face detection.
func GetFaceClient() *FaceClient {
	faceClientOnce.Do(func() {
		cfg := config.Get()

		if cfg.FaceAPIBaseURL == "" {
			log.Warn().Msg("FACE_API_BASE_URL not configured, face detection disabled")
			return
		}

		faceClient = &FaceClient{
			baseURL: cfg.FaceAPIBaseURL,
			apiKey:  cfg.FaceAPIKey,
			minConf: cfg.FaceMinConfidence,
			httpClient: &http.Client{
				Timeout: 5 * time.Minute, // Long timeout for ML operations
			},
		}

		log.Info().Str("baseURL", cfg.FaceAPIBaseURL).Msg("face recognition initialized")
	})

	return faceClient
}

// Available reports whether face detection is configured
func (f *FaceClient) Available() bool {
	return f != nil
}

// DetectFaces finds faces in an image file and returns them with embeddings.
// Faces below the configured confidence floor are dropped.
func (f *FaceClient) DetectFaces(imagePath string) ([]DetectedFace, error) {
	if f == nil {
		return nil, nil
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"image":      base64.StdEncoding.EncodeToString(imageData),
		"embeddings": true,
	}

	resp, err := f.post("/api/face-detection", body)
	if err != nil {
		return nil, err
	}

	var result faceDetectionResponse
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("face detection: %s", result.Error)
	}

	faces := make([]DetectedFace, 0, len(result.Faces))
	for _, face := range result.Faces {
		if face.Confidence < f.minConf {
			continue
		}
		if face.Model == "" {
			face.Model = result.Model
		}
		faces = append(faces, face)
	}

	return faces, nil
}

// post makes a POST request to the face recognition API
func (f *FaceClient) post(endpoint string, body map[string]interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	fullURL, err := url.JoinPath(f.baseURL, endpoint)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", fullURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if f.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("face api %s: status %d: %s", endpoint, resp.StatusCode, string(data))
	}

	return io.ReadAll(resp.Body)
}

// CosineSimilarity computes the cosine similarity of two vectors.
// Returns 0 for mismatched or empty vectors.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
