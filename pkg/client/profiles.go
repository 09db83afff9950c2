package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ProfileService handles the admin profile API
type ProfileService struct {
	client *Client
}

// ProfileListOptions contains options for listing profiles
type ProfileListOptions struct {
	ListOptions
	Search string
	Plan   string
}

// UpdateSubscriptionRequest patches a profile's plan or quota
type UpdateSubscriptionRequest struct {
	Plan        *string `json:"plan,omitempty"`
	AppealQuota *int64  `json:"appeal_quota,omitempty"`
	Unlimited   bool    `json:"unlimited,omitempty"`
}

// List retrieves profiles (admin only)
func (s *ProfileService) List(ctx context.Context, opts *ProfileListOptions) (*ProfilePage, error) {
	query := url.Values{}
	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.Search != "" {
			query.Set("search", opts.Search)
		}
		if opts.Plan != "" {
			query.Set("plan", opts.Plan)
		}
	}

	path := "/api/v1/admin/profiles"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page ProfilePage
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateSubscription patches a profile's plan or quota (admin only)
func (s *ProfileService) UpdateSubscription(ctx context.Context, id int64, req UpdateSubscriptionRequest) (*Profile, error) {
	var p Profile
	if err := s.client.doRequest(ctx, "PATCH", fmt.Sprintf("/api/v1/admin/profiles/%d", id), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
