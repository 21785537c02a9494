package model

// PlayAudioRequest carries an opaque base64 TTS payload to render.
type PlayAudioRequest struct {
	Audio string `json:"audio" binding:"required"`
}

// TermAudioRequest asks for the pronunciation of a single word or phrase.
type TermAudioRequest struct {
	Term string `json:"term" binding:"required,min=1,max=100"`
}
