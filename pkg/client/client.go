// Package client is a typed Go consumer of the sprout HTTP API. It pairs a
// cookie-jarred http.Client with a Store holding the last-fetched plant
// snapshot, so tools like the seeder can drive the API the same way the web
// frontend does.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"sprout/internal/database"
	"sprout/internal/repository"
	"sprout/internal/status"
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// User is the identity shape returned by the auth endpoints.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// WateringResult is the watering endpoint's payload: the new history row plus
// the updated plant.
type WateringResult struct {
	Watering *database.WateringHistory `json:"watering"`
	Plant    *database.Plant           `json:"plant"`
}

// PlantDetail is the detail endpoint's payload.
type PlantDetail struct {
	database.Plant
	Status status.PlantStatus `json:"status"`
}

// Client calls the API with a persistent cookie session.
type Client struct {
	baseURL string
	http    *http.Client

	// Store keeps the latest plant snapshot seen by this client.
	Store *Store
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
		Store:   NewStore(),
	}, nil
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

// do sends one request and decodes the envelope, returning the raw data
// payload or an *APIError for non-2xx answers.
func (c *Client) do(method, path string, body io.Reader, contentType string) (json.RawMessage, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding response from %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	return env.Data, nil
}

func (c *Client) doJSON(method, path string, payload interface{}) (json.RawMessage, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(method, path, body, contentType)
}

func decodeInto(data json.RawMessage, v interface{}) error {
	if data == nil {
		return fmt.Errorf("empty data payload")
	}
	return json.Unmarshal(data, v)
}

// Register creates an account. The session cookie lands in the jar, so the
// client is logged in afterwards.
func (c *Client) Register(email, name, password string) (*User, error) {
	data, err := c.doJSON(http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "name": name, "password": password,
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		User User `json:"user"`
	}
	if err := decodeInto(data, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Login(email, password string) (*User, error) {
	data, err := c.doJSON(http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		User User `json:"user"`
	}
	if err := decodeInto(data, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Logout() error {
	_, err := c.doJSON(http.MethodPost, "/api/auth/logout", nil)
	if err == nil {
		c.Store.Reset()
	}
	return err
}

func (c *Client) Me() (*User, error) {
	data, err := c.doJSON(http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		User User `json:"user"`
	}
	if err := decodeInto(data, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) DeleteAccount() error {
	_, err := c.doJSON(http.MethodDelete, "/api/auth/account", nil)
	if err == nil {
		c.Store.Reset()
	}
	return err
}

// ListPlants fetches all plants with their computed status and replaces the
// store snapshot wholesale.
func (c *Client) ListPlants() ([]status.PlantStatus, error) {
	data, err := c.doJSON(http.MethodGet, "/api/plants", nil)
	if err != nil {
		return nil, err
	}

	var plants []status.PlantStatus
	if err := decodeInto(data, &plants); err != nil {
		return nil, err
	}

	c.Store.Replace(plants)
	return plants, nil
}

func (c *Client) CreatePlant(in repository.CreatePlantInput) (*database.Plant, error) {
	data, err := c.doJSON(http.MethodPost, "/api/plants", in)
	if err != nil {
		return nil, err
	}

	var plant database.Plant
	if err := decodeInto(data, &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}

func (c *Client) GetPlant(id string) (*PlantDetail, error) {
	data, err := c.doJSON(http.MethodGet, "/api/plants/"+id, nil)
	if err != nil {
		return nil, err
	}

	var detail PlantDetail
	if err := decodeInto(data, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdatePlant applies a partial update and patches the matching snapshot entry
// in place instead of refetching the list.
func (c *Client) UpdatePlant(id string, in repository.UpdatePlantInput) (*database.Plant, error) {
	data, err := c.doJSON(http.MethodPut, "/api/plants/"+id, in)
	if err != nil {
		return nil, err
	}

	var plant database.Plant
	if err := decodeInto(data, &plant); err != nil {
		return nil, err
	}

	c.Store.Patch(plant.ID, func(s *status.PlantStatus) {
		s.Name = plant.Name
		s.Species = plant.Species
		s.WateringFrequencyDays = plant.WateringFrequencyDays
		s.ProfileImageURL = plant.ProfileImageURL
	})
	return &plant, nil
}

func (c *Client) DeletePlant(id string) error {
	_, err := c.doJSON(http.MethodDelete, "/api/plants/"+id, nil)
	if err == nil {
		c.Store.Remove(id)
	}
	return err
}

// WaterPlant records a watering event with an optional note, then refreshes
// the snapshot entry with the new last-watered stamp.
func (c *Client) WaterPlant(id string, notes *string) (*WateringResult, error) {
	payload := map[string]interface{}{}
	if notes != nil {
		payload["notes"] = *notes
	}

	data, err := c.doJSON(http.MethodPost, "/api/plants/"+id+"/water", payload)
	if err != nil {
		return nil, err
	}

	var result WateringResult
	if err := decodeInto(data, &result); err != nil {
		return nil, err
	}

	if result.Plant != nil {
		fresh := status.Calculate(result.Plant, time.Now())
		c.Store.Patch(id, func(s *status.PlantStatus) { *s = fresh })
	}
	return &result, nil
}

// WaterPlantWithPhoto records a watering event with an inline image file.
func (c *Client) WaterPlantWithPhoto(id string, notes *string, photoPath string) (*WateringResult, error) {
	file, err := os.Open(photoPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if notes != nil {
		if err := mw.WriteField("notes", *notes); err != nil {
			return nil, err
		}
	}
	part, err := mw.CreateFormFile("photo", filepath.Base(photoPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	data, err := c.do(http.MethodPost, "/api/plants/"+id+"/water", &body, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var result WateringResult
	if err := decodeInto(data, &result); err != nil {
		return nil, err
	}

	if result.Plant != nil {
		fresh := status.Calculate(result.Plant, time.Now())
		c.Store.Patch(id, func(s *status.PlantStatus) { *s = fresh })
	}
	return &result, nil
}

func (c *Client) WateringHistory(id string) ([]database.WateringHistory, error) {
	data, err := c.doJSON(http.MethodGet, "/api/plants/"+id+"/watering-history", nil)
	if err != nil {
		return nil, err
	}

	var history []database.WateringHistory
	if err := decodeInto(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (c *Client) ListPhotos(plantID string) ([]repository.PhotoItem, error) {
	data, err := c.doJSON(http.MethodGet, "/api/plants/"+plantID+"/photos", nil)
	if err != nil {
		return nil, err
	}

	var items []repository.PhotoItem
	if err := decodeInto(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreatePhoto(plantID, imageURL string, width, height int, isProfile bool) (*database.PlantPhoto, error) {
	data, err := c.doJSON(http.MethodPost, "/api/plants/"+plantID+"/photos", map[string]interface{}{
		"imageUrl": imageURL, "isProfile": isProfile, "width": width, "height": height,
	})
	if err != nil {
		return nil, err
	}

	var photo database.PlantPhoto
	if err := decodeInto(data, &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

func (c *Client) DeletePhoto(plantID, photoID string, kind repository.PhotoKind) (*repository.PhotoDeletion, error) {
	data, err := c.doJSON(http.MethodDelete,
		fmt.Sprintf("/api/plants/%s/photos/%s?type=%s", plantID, photoID, kind), nil)
	if err != nil {
		return nil, err
	}

	var deletion repository.PhotoDeletion
	if err := decodeInto(data, &deletion); err != nil {
		return nil, err
	}
	return &deletion, nil
}

// Store holds the last-fetched plant snapshot behind a mutex. One instance per
// Client, never a package global.
type Store struct {
	mu     sync.Mutex
	plants []status.PlantStatus
}

func NewStore() *Store {
	return &Store{}
}

// Replace swaps the whole snapshot, as after a list fetch.
func (s *Store) Replace(plants []status.PlantStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plants = append(s.plants[:0:0], plants...)
}

// Patch applies fn to the entry with the given id, if present.
func (s *Store) Patch(id string, fn func(*status.PlantStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.plants {
		if s.plants[i].ID == id {
			fn(&s.plants[i])
			return
		}
	}
}

// Remove drops the entry with the given id.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.plants {
		if s.plants[i].ID == id {
			s.plants = append(s.plants[:i], s.plants[i+1:]...)
			return
		}
	}
}

// Plants returns a copy of the current snapshot.
func (s *Store) Plants() []status.PlantStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(s.plants[:0:0], s.plants...)
}

// Get returns the snapshot entry for id, or nil.
func (s *Store) Get(id string) *status.PlantStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.plants {
		if s.plants[i].ID == id {
			copied := s.plants[i]
			return &copied
		}
	}
	return nil
}

// Reset clears the snapshot, the dispose boundary on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plants = nil
}
