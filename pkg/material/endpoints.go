package material

const (
	// APIUpload adds a permanent image/voice/video/thumb material.
	APIUpload = "cgi-bin/material/add_material"
	// APINewsUpload adds a permanent news material.
	APINewsUpload = "cgi-bin/material/add_news"
	// APINewsUpdate replaces one article of a news material.
	APINewsUpdate = "cgi-bin/material/update_news"
	// APINewsImageUpload uploads an image referenced from article content.
	APINewsImageUpload = "cgi-bin/media/uploadimg"
	// APIGet fetches a material by media id.
	APIGet = "cgi-bin/material/get_material"
	// APIDelete removes a material.
	APIDelete = "cgi-bin/material/del_material"
	// APILists pages through materials of one type.
	APILists = "cgi-bin/material/batchget_material"
	// APIStats counts materials per type.
	APIStats = "cgi-bin/material/get_materialcount"
)

const (
	// DefaultListCount is the page size used when callers have no preference.
	DefaultListCount = 20
	// MaxListCount is the largest page the platform serves.
	MaxListCount = 20
)

// MediaType discriminates material kinds.
type MediaType string

const (
	TypeImage MediaType = "image"
	TypeVideo MediaType = "video"
	TypeVoice MediaType = "voice"
	TypeThumb MediaType = "thumb"
	TypeNews  MediaType = "news"
)

// Listable reports whether t can be paged with Lists.
func (t MediaType) Listable() bool {
	switch t {
	case TypeImage, TypeVideo, TypeVoice, TypeNews:
		return true
	}
	return false
}
