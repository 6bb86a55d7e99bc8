// Package imagekit uploads images to the ImageKit media library.
package imagekit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/arinleviti/80sHorrorHub/internal/constants"
	"github.com/arinleviti/80sHorrorHub/internal/httpclient"
	"github.com/arinleviti/80sHorrorHub/internal/schema"
)

var ErrNoPrivateKey = errors.New("imagekit private key not configured")

var uploadSchema = schema.Schema{
	{Path: "fileId", Kind: schema.String},
	{Path: "url", Kind: schema.String},
}

// UploadResult is the part of the upload response callers use.
type UploadResult struct {
	FileID   string `json:"fileId"`
	Name     string `json:"name"`
	FilePath string `json:"filePath"`
	URL      string `json:"url"`
}

type Client struct {
	http       httpclient.Fetcher
	privateKey string
	uploadURL  string
}

func NewClient(http httpclient.Fetcher, privateKey, uploadURL string) *Client {
	if uploadURL == "" {
		uploadURL = constants.ImageKitUploadURL
	}
	return &Client{http: http, privateKey: privateKey, uploadURL: uploadURL}
}

// Upload stores file under folder/fileName and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, file []byte, fileName, folder string) (*UploadResult, error) {
	if c.privateKey == "" {
		return nil, ErrNoPrivateKey
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(file); err != nil {
		return nil, err
	}
	fields := map[string]string{
		"fileName":          fileName,
		"folder":            folder,
		"useUniqueFileName": "false",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.SetBasicAuth(c.privateKey, "")

	raw, err := c.http.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", fileName, err)
	}
	if err := uploadSchema.ValidateJSON(raw); err != nil {
		return nil, fmt.Errorf("upload %s: %w", fileName, err)
	}
	var res UploadResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
