package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// AppealService handles appeal-related API calls
type AppealService struct {
	client *Client
}

// CreateAppealRequest represents a new appeal submission
type CreateAppealRequest struct {
	Payer      string `json:"payer"`
	DenialCode string `json:"denial_code"`
	LetterText string `json:"letter_text,omitempty"`
}

// AppealListOptions contains options for listing appeals
type AppealListOptions struct {
	ListOptions
	Status string
}

// List retrieves the caller's appeals, newest first
func (s *AppealService) List(ctx context.Context, opts *AppealListOptions) (*AppealPage, error) {
	query := url.Values{}
	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.Status != "" {
			query.Set("status", opts.Status)
		}
	}

	path := "/api/v1/appeals"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page AppealPage
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Create submits a new appeal
func (s *AppealService) Create(ctx context.Context, req CreateAppealRequest) (*Appeal, error) {
	var a Appeal
	if err := s.client.doRequest(ctx, "POST", "/api/v1/appeals", req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Get retrieves one appeal by ID
func (s *AppealService) Get(ctx context.Context, id string) (*Appeal, error) {
	var a Appeal
	if err := s.client.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/appeals/%s", id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GenerateLetter generates and saves the appeal letter, consuming quota
func (s *AppealService) GenerateLetter(ctx context.Context, id string) (*Appeal, error) {
	var a Appeal
	if err := s.client.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/appeals/%s/letter", id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Quota reports the caller's quota consumption
func (s *AppealService) Quota(ctx context.Context) (*QuotaStatus, error) {
	var q QuotaStatus
	if err := s.client.doRequest(ctx, "GET", "/api/v1/quota", nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}
