// Package storage hands files to Cloudinary and returns the refs the core stores.
package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"
)

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
	now    func() time.Time
}

// Signature is what a browser needs to upload straight to Cloudinary.
type Signature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"api_key"`
	CloudName string `json:"cloud_name"`
	Folder    string `json:"folder"`
}

func NewCloudinary(cloudinaryURL, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, errors.Wrap(err, "initialize cloudinary")
	}
	return &Cloudinary{cld: cld, folder: folder, now: time.Now}, nil
}

// Upload stores file (a path, reader or *multipart.FileHeader) under name.
func (c *Cloudinary) Upload(ctx context.Context, file any, name string) (models.FileRef, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       c.folder,
		PublicID:     name,
		ResourceType: "auto",
	})
	if err != nil {
		return models.FileRef{}, errors.Wrap(err, "upload file")
	}
	if res.Error.Message != "" {
		return models.FileRef{}, errors.Errorf("upload file: %s", res.Error.Message)
	}
	return models.FileRef{URL: res.SecureURL, ID: res.PublicID}, nil
}

// Sign produces upload parameters for the configured folder.
func (c *Cloudinary) Sign() (Signature, error) {
	params, err := api.StructToParams(uploader.UploadParams{Folder: c.folder})
	if err != nil {
		return Signature{}, errors.Wrap(err, "prepare signature params")
	}

	ts := c.now().Unix()
	params.Set("timestamp", strconv.FormatInt(ts, 10))

	sig, err := api.SignParameters(params, c.cld.Config.Cloud.APISecret)
	if err != nil {
		return Signature{}, errors.Wrap(err, "sign upload params")
	}

	return Signature{
		Signature: sig,
		Timestamp: ts,
		APIKey:    c.cld.Config.Cloud.APIKey,
		CloudName: c.cld.Config.Cloud.CloudName,
		Folder:    c.folder,
	}, nil
}
