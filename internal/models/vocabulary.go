package models

// Language is an entry of the backend's language catalog.
type Language struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// WordContent holds the generated fields of a flashcard. The backend returns
// it either as shared_word (deduplicated across users) or custom_content
// (context-specific generation).
type WordContent struct {
	Word               string `json:"word"`
	Translation        string `json:"translation"`
	ExampleSentence    string `json:"example_sentence"`
	ExampleTranslation string `json:"example_translation"`
	ImageURL           string `json:"image_url,omitempty"`
	AudioWord          string `json:"audio_word,omitempty"`
	AudioSentence      string `json:"audio_sentence,omitempty"`
}

// WordEntry is one saved vocabulary item as listed by GET /vocabulary/.
type WordEntry struct {
	ID            int          `json:"id"`
	Deck          string       `json:"deck"`
	CreatedAt     string       `json:"created_at"`
	SharedWord    *WordContent `json:"shared_word,omitempty"`
	CustomContent *WordContent `json:"custom_content,omitempty"`
}

// Content returns whichever generated payload the entry carries.
func (w *WordEntry) Content() *WordContent {
	if w.CustomContent != nil {
		return w.CustomContent
	}
	return w.SharedWord
}

// GenerateWordRequest is the payload of POST /vocabulary/.
type GenerateWordRequest struct {
	Word       string `json:"word"`
	SourceLang int    `json:"source_lang"`
	TargetLang int    `json:"target_lang"`
	Context    string `json:"context,omitempty"`
	Deck       string `json:"deck"`
}

// GenerateWordResponse is the created entry returned by POST /vocabulary/.
type GenerateWordResponse struct {
	ID            int          `json:"id"`
	Deck          string       `json:"deck"`
	SharedWord    *WordContent `json:"shared_word,omitempty"`
	CustomContent *WordContent `json:"custom_content,omitempty"`
}

// Content returns whichever generated payload the response carries.
func (r *GenerateWordResponse) Content() *WordContent {
	if r.CustomContent != nil {
		return r.CustomContent
	}
	return r.SharedWord
}

// DownloadDeckRequest is the payload of POST /vocabulary/download-apkg/.
type DownloadDeckRequest struct {
	IDs             []int  `json:"ids"`
	DeckName        string `json:"deck_name"`
	AllowDuplicates bool   `json:"allow_duplicates,omitempty"`
}

// GenerateAudioRequest is the payload of POST /generate-audio/.
type GenerateAudioRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// GenerateAudioResponse carries the URL of the synthesized clip.
type GenerateAudioResponse struct {
	AudioURL string `json:"audio_url"`
}

// GenerateWordForm is the create-word page form. Language/context/deck map
// straight onto GenerateWordRequest once validated.
type GenerateWordForm struct {
	Word       string `form:"word" json:"word" binding:"required,min=1,max=100"`
	SourceLang int    `form:"source_lang" json:"source_lang" binding:"required,gt=0"`
	TargetLang int    `form:"target_lang" json:"target_lang" binding:"required,gt=0,nefield=SourceLang"`
	Context    string `form:"context" json:"context" binding:"omitempty,max=500"`
	Deck       string `form:"deck" json:"deck" binding:"required,min=1,max=100"`
}
