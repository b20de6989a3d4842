// Package user covers follower info, remarks, the blacklist and tags.
package user

import (
	"context"

	"github.com/samvad-hq/samvad-wxoa/pkg/httpclient"
)

const (
	APIInfo         = "cgi-bin/user/info"
	APIBatchInfo    = "cgi-bin/user/info/batchget"
	APIList         = "cgi-bin/user/get"
	APIRemark       = "cgi-bin/user/info/updateremark"
	APIBlacklist    = "cgi-bin/tags/members/getblacklist"
	APIBatchBlock   = "cgi-bin/tags/members/batchblacklist"
	APIBatchUnblock = "cgi-bin/tags/members/batchunblacklist"

	// DefaultLang is sent when no language is given.
	DefaultLang = "zh_CN"
)

// Info is a follower profile.
type Info struct {
	Subscribe      int    `json:"subscribe"`
	OpenID         string `json:"openid"`
	Language       string `json:"language,omitempty"`
	SubscribeTime  int64  `json:"subscribe_time,omitempty"`
	UnionID        string `json:"unionid,omitempty"`
	Remark         string `json:"remark,omitempty"`
	GroupID        int    `json:"groupid,omitempty"`
	TagIDList      []int  `json:"tagid_list,omitempty"`
	SubscribeScene string `json:"subscribe_scene,omitempty"`
	QRScene        int64  `json:"qr_scene,omitempty"`
	QRSceneStr     string `json:"qr_scene_str,omitempty"`
}

// List is one page of follower open ids.
type List struct {
	Total int `json:"total"`
	Count int `json:"count"`
	Data  struct {
		OpenID []string `json:"openid"`
	} `json:"data"`
	NextOpenID string `json:"next_openid"`
}

type infoRequest struct {
	OpenID string `json:"openid"`
	Lang   string `json:"lang"`
}

type batchInfoRequest struct {
	UserList []infoRequest `json:"user_list"`
}

type batchInfoResponse struct {
	UserInfoList []Info `json:"user_info_list"`
}

type remarkRequest struct {
	OpenID string `json:"openid"`
	Remark string `json:"remark"`
}

// blacklistRequest keeps begin_openid even when nil; the platform reads a
// JSON null as "from the start".
type blacklistRequest struct {
	BeginOpenID *string `json:"begin_openid"`
}

type openIDListRequest struct {
	OpenIDList []string `json:"openid_list"`
}

// Client wraps the user endpoints.
type Client struct {
	transport httpclient.Transport
	textual   []string
}

// New builds a user client. textual overrides the content type prefixes
// decoded as JSON; none means httpclient.DefaultTextualContentTypes.
func New(transport httpclient.Transport, textual ...string) *Client {
	return &Client{transport: transport, textual: append([]string(nil), textual...)}
}

func langOrDefault(lang string) string {
	if lang == "" {
		return DefaultLang
	}
	return lang
}

// Get returns the profile of openID.
func (c *Client) Get(ctx context.Context, openID, lang string) (*Info, error) {
	resp, err := c.transport.Get(ctx, APIInfo, map[string]string{
		"openid": openID,
		"lang":   langOrDefault(lang),
	})
	if err != nil {
		return nil, err
	}
	var out Info
	if err := httpclient.DecodeJSON(resp, &out, c.textual); err != nil {
		return nil, err
	}
	return &out, nil
}

// BatchGet returns the profiles of openIDs, all in the same language.
func (c *Client) BatchGet(ctx context.Context, openIDs []string, lang string) ([]Info, error) {
	lang = langOrDefault(lang)
	req := batchInfoRequest{UserList: make([]infoRequest, len(openIDs))}
	for i, id := range openIDs {
		req.UserList[i] = infoRequest{OpenID: id, Lang: lang}
	}

	resp, err := c.transport.PostJSON(ctx, APIBatchInfo, req)
	if err != nil {
		return nil, err
	}
	var out batchInfoResponse
	if err := httpclient.DecodeJSON(resp, &out, c.textual); err != nil {
		return nil, err
	}
	return out.UserInfoList, nil
}

// List pages through followers starting after nextOpenID. A nil cursor starts
// from the beginning; the parameter is still sent, empty.
func (c *Client) List(ctx context.Context, nextOpenID *string) (*List, error) {
	resp, err := c.transport.Get(ctx, APIList, map[string]string{"next_openid": deref(nextOpenID)})
	if err != nil {
		return nil, err
	}
	var out List
	if err := httpclient.DecodeJSON(resp, &out, c.textual); err != nil {
		return nil, err
	}
	return &out, nil
}

// Remark sets the remark name of a follower.
func (c *Client) Remark(ctx context.Context, openID, remark string) error {
	resp, err := c.transport.PostJSON(ctx, APIRemark, remarkRequest{OpenID: openID, Remark: remark})
	if err != nil {
		return err
	}
	return httpclient.DecodeJSON(resp, nil, c.textual)
}

// Blacklist pages through blocked followers starting at beginOpenID.
func (c *Client) Blacklist(ctx context.Context, beginOpenID *string) (*List, error) {
	resp, err := c.transport.PostJSON(ctx, APIBlacklist, blacklistRequest{BeginOpenID: beginOpenID})
	if err != nil {
		return nil, err
	}
	var out List
	if err := httpclient.DecodeJSON(resp, &out, c.textual); err != nil {
		return nil, err
	}
	return &out, nil
}

// BatchBlock adds openIDs to the blacklist.
func (c *Client) BatchBlock(ctx context.Context, openIDs []string) error {
	return c.postOpenIDs(ctx, APIBatchBlock, openIDs)
}

// BatchUnblock removes openIDs from the blacklist.
func (c *Client) BatchUnblock(ctx context.Context, openIDs []string) error {
	return c.postOpenIDs(ctx, APIBatchUnblock, openIDs)
}

func (c *Client) postOpenIDs(ctx context.Context, path string, openIDs []string) error {
	resp, err := c.transport.PostJSON(ctx, path, openIDListRequest{OpenIDList: openIDs})
	if err != nil {
		return err
	}
	return httpclient.DecodeJSON(resp, nil, c.textual)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
