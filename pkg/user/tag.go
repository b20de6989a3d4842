package user

import (
	"context"

	"github.com/samvad-hq/samvad-wxoa/pkg/httpclient"
)

const (
	APITagCreate  = "cgi-bin/tags/create"
	APITagList    = "cgi-bin/tags/get"
	APITagUpdate  = "cgi-bin/tags/update"
	APITagDelete  = "cgi-bin/tags/delete"
	APIUserTags   = "cgi-bin/tags/getidlist"
	APIUsersOfTag = "cgi-bin/user/tag/get"
	APITagUsers   = "cgi-bin/tags/members/batchtagging"
	APIUntagUsers = "cgi-bin/tags/members/batchuntagging"
)

// Tag is a follower tag.
type Tag struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
}

type tagEnvelope struct {
	Tag Tag `json:"tag"`
}

type tagNameRequest struct {
	Tag struct {
		Name string `json:"name"`
	} `json:"tag"`
}

type tagIDRequest struct {
	Tag struct {
		ID int `json:"id"`
	} `json:"tag"`
}

type tagListResponse struct {
	Tags []Tag `json:"tags"`
}

type userTagsRequest struct {
	OpenID string `json:"openid"`
}

type userTagsResponse struct {
	TagIDList []int `json:"tagid_list"`
}

type usersOfTagRequest struct {
	TagID      int    `json:"tagid"`
	NextOpenID string `json:"next_openid"`
}

type tagMembersRequest struct {
	OpenIDList []string `json:"openid_list"`
	TagID      int      `json:"tagid"`
}

// TagClient wraps the tag endpoints.
type TagClient struct {
	transport httpclient.Transport
	textual   []string
}

// NewTagClient builds a tag client. textual works as in New.
func NewTagClient(transport httpclient.Transport, textual ...string) *TagClient {
	return &TagClient{transport: transport, textual: append([]string(nil), textual...)}
}

// Create adds a tag and returns it with its new id.
func (c *TagClient) Create(ctx context.Context, name string) (*Tag, error) {
	var req tagNameRequest
	req.Tag.Name = name

	resp, err := c.transport.PostJSON(ctx, APITagCreate, req)
	if err != nil {
		return nil, err
	}
	var out tagEnvelope
	if err := httpclient.DecodeJSON(resp, &out, c.textual); err != nil {
		return nil, err
	}
	return &out.Tag, nil
}

// List returns all tags.
func (c *TagClient) List(ctx context.Context) ([]Tag, error) {
	resp, err := c.transport.Get(ctx, APITagList, nil)
	if err != nil {
		return nil, err
	}
	var out tagListResponse
	if err := httpclient.DecodeJSON(resp, &out, c.textual); err != nil {
		return nil, err
	}
	return out.Tags, nil
}

// Update renames a tag.
func (c *TagClient) Update(ctx context.Context, tagID int, name string) error {
	resp, err := c.transport.PostJSON(ctx, APITagUpdate, tagEnvelope{Tag: Tag{ID: tagID, Name: name}})
	if err != nil {
		return err
	}
	return httpclient.DecodeJSON(resp, nil, c.textual)
}

// Delete removes a tag.
func (c *TagClient) Delete(ctx context.Context, tagID int) error {
	var req tagIDRequest
	req.Tag.ID = tagID

	resp, err := c.transport.PostJSON(ctx, APITagDelete, req)
	if err != nil {
		return err
	}
	return httpclient.DecodeJSON(resp, nil, c.textual)
}

// UserTags returns the tag ids of a follower.
func (c *TagClient) UserTags(ctx context.Context, openID string) ([]int, error) {
	resp, err := c.transport.PostJSON(ctx, APIUserTags, userTagsRequest{OpenID: openID})
	if err != nil {
		return nil, err
	}
	var out userTagsResponse
	if err := httpclient.DecodeJSON(resp, &out, c.textual); err != nil {
		return nil, err
	}
	return out.TagIDList, nil
}

// UsersOfTag pages through the followers carrying tagID.
func (c *TagClient) UsersOfTag(ctx context.Context, tagID int, nextOpenID *string) (*List, error) {
	resp, err := c.transport.PostJSON(ctx, APIUsersOfTag, usersOfTagRequest{TagID: tagID, NextOpenID: deref(nextOpenID)})
	if err != nil {
		return nil, err
	}
	var out List
	if err := httpclient.DecodeJSON(resp, &out, c.textual); err != nil {
		return nil, err
	}
	return &out, nil
}

// TagUsers puts tagID on every follower in openIDs.
func (c *TagClient) TagUsers(ctx context.Context, openIDs []string, tagID int) error {
	return c.members(ctx, APITagUsers, openIDs, tagID)
}

// UntagUsers removes tagID from every follower in openIDs.
func (c *TagClient) UntagUsers(ctx context.Context, openIDs []string, tagID int) error {
	return c.members(ctx, APIUntagUsers, openIDs, tagID)
}

func (c *TagClient) members(ctx context.Context, path string, openIDs []string, tagID int) error {
	resp, err := c.transport.PostJSON(ctx, path, tagMembersRequest{OpenIDList: openIDs, TagID: tagID})
	if err != nil {
		return err
	}
	return httpclient.DecodeJSON(resp, nil, c.textual)
}
