package models

// FrameContext is the context a frame host hands to the app when a client
// opens it
// Fields may be absent; absence is a legitimate state, not an error
type FrameContext struct {
	User FrameUser `json:"user"`
}

// FrameUser identifies the person using the frame
type FrameUser struct {
	Fid      int64  `json:"fid,omitempty"`
	Username string `json:"username,omitempty"`
}
