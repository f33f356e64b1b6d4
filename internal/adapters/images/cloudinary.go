package images

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"clubevents/internal/domain"
)

const cloudinaryAPIBase = "https://api.cloudinary.com"

// CloudinaryConfig holds Cloudinary account credentials.
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	BaseURL      string // defaults to https://api.cloudinary.com
	HTTPClient   *http.Client
}

type cloudinaryStore struct {
	cfg    CloudinaryConfig
	client *http.Client
	now    func() time.Time
}

// NewCloudinaryStore returns an ImageStore backed by the Cloudinary upload and admin APIs.
func NewCloudinaryStore(cfg CloudinaryConfig) (domain.ImageStore, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary: cloud name, api key and api secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = cloudinaryAPIBase
	}
	client := cfg.HTTPClient
	if client == nil {
		client = defaultHTTPClient()
	}
	return &cloudinaryStore{cfg: cfg, client: client, now: time.Now}, nil
}

// unsignedParams are sent with a request but never part of the signature.
var unsignedParams = map[string]bool{
	"file":          true,
	"api_key":       true,
	"resource_type": true,
	"cloud_name":    true,
	"signature":     true,
}

// signParams computes the Cloudinary request signature: the SHA-1 of the
// non-empty signable params sorted by key, joined as k=v with &, followed by the secret.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if unsignedParams[k] || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

type cloudinaryUploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *cloudinaryStore) Upload(ctx context.Context, img domain.ImageUpload) (string, error) {
	params := map[string]string{
		"public_id":     img.Name,
		"folder":        img.Folder,
		"upload_preset": c.cfg.UploadPreset,
		"overwrite":     "true",
		"timestamp":     strconv.FormatInt(c.now().Unix(), 10),
	}
	params["signature"] = signParams(params, c.cfg.APISecret)
	params["api_key"] = c.cfg.APIKey

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range params {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("cloudinary: write field %s: %w", k, err)
		}
	}
	fw, err := mw.CreateFormFile("file", img.Name)
	if err != nil {
		return "", fmt.Errorf("cloudinary: create file part: %w", err)
	}
	if _, err := fw.Write(img.Data); err != nil {
		return "", fmt.Errorf("cloudinary: write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("cloudinary: close multipart: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", c.cfg.BaseURL, url.PathEscape(c.cfg.CloudName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("cloudinary: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out cloudinaryUploadResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.PublicID == "" {
		return "", errors.New("cloudinary: upload response has no public_id")
	}
	return out.PublicID, nil
}

func (c *cloudinaryStore) DeleteImages(ctx context.Context, publicIDs []string) error {
	if len(publicIDs) == 0 {
		return nil
	}
	q := url.Values{}
	for _, id := range publicIDs {
		q.Add("public_ids[]", id)
	}
	endpoint := fmt.Sprintf("%s/v1_1/%s/resources/image/upload?%s", c.cfg.BaseURL, url.PathEscape(c.cfg.CloudName), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("cloudinary: create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)
	return c.do(req, nil)
}

func (c *cloudinaryStore) DeleteFolder(ctx context.Context, folder string) error {
	segments := strings.Split(strings.Trim(folder, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	endpoint := fmt.Sprintf("%s/v1_1/%s/folders/%s", c.cfg.BaseURL, url.PathEscape(c.cfg.CloudName), strings.Join(segments, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("cloudinary: create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)
	return c.do(req, nil)
}

func (c *cloudinaryStore) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("cloudinary: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr cloudinaryUploadResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != nil {
			return fmt.Errorf("cloudinary: status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("cloudinary: status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("cloudinary: decode response: %w", err)
	}
	return nil
}
