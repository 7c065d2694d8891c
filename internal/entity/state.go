package entity

// Endpoint identifies one of the two echo services.
type Endpoint string

const (
	Service1 Endpoint = "service1"
	Service2 Endpoint = "service2"
)

func (e Endpoint) Valid() bool {
	return e == Service1 || e == Service2
}

type EchoResponse struct {
	Message *string `json:"message"`
}

// SelectedFile is the file picked in the upload form. The bytes stay in
// memory and are never serialized.
type SelectedFile struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
}

// UIState is the per-session view state rendered by the page.
type UIState struct {
	InputText        string        `json:"input_text"`
	Service1Response string        `json:"service1_response"`
	Service2Response string        `json:"service2_response"`
	SelectedFile     *SelectedFile `json:"selected_file,omitempty"`
	Processing       bool          `json:"processing"`
	Download         *Artifact     `json:"download,omitempty"`
	ErrorMessage     string        `json:"error_message,omitempty"`
}
