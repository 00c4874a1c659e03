package orchestrator

import (
	"context"
	"net/url"

	"github.com/OpenNSW/aadhaar/internal/aadhaar/model"
	"github.com/OpenNSW/aadhaar/internal/apiclient"
	"github.com/OpenNSW/aadhaar/internal/filedata"
)

const (
	uploadEndpoint        = "/aadhaar/upload"
	verificationsEndpoint = "/aadhaar/verifications"
)

// Uploader sends a document and returns the server's verdict.
type Uploader interface {
	Upload(ctx context.Context, file *filedata.File) (*model.UploadResponse, error)
}

// AadhaarClient talks to the Aadhaar verification API.
type AadhaarClient struct {
	api *apiclient.Client

	UploadPolicy apiclient.Policy
	LookupPolicy apiclient.Policy
}

func NewAadhaarClient(api *apiclient.Client) *AadhaarClient {
	return &AadhaarClient{
		api:          api,
		UploadPolicy: apiclient.MutationPolicy(),
		LookupPolicy: apiclient.QueryPolicy(),
	}
}

// Upload posts file as the sole multipart field.
func (c *AadhaarClient) Upload(ctx context.Context, file *filedata.File) (*model.UploadResponse, error) {
	var resp model.UploadResponse
	err := apiclient.Retry(ctx, c.UploadPolicy, func(ctx context.Context) error {
		resp = model.UploadResponse{}
		return c.api.UploadFile(ctx, uploadEndpoint, apiclient.Form{
			Files: map[string]*filedata.File{model.UploadField: file},
		}, &resp)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Verification fetches the current state of an uploaded document.
func (c *AadhaarClient) Verification(ctx context.Context, id string) (*model.Verification, error) {
	var resp model.VerificationResponse
	err := apiclient.Retry(ctx, c.LookupPolicy, func(ctx context.Context) error {
		return c.api.Get(ctx, verificationsEndpoint+"/"+url.PathEscape(id), &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, &apiclient.ClientError{Message: "verification missing from response", StatusCode: 500}
	}
	return resp.Data, nil
}
