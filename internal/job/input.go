package job

// Input is the resolved payload of a request. Exactly one concrete type
// is produced per request: AudioInput, ImageInput or TextInput.
type Input interface {
	Modality() Modality
	isInput()
}

// AudioInput carries base64-encoded audio.
type AudioInput struct {
	Encoded string
}

// ImageInput carries a base64-encoded image.
type ImageInput struct {
	Encoded string
}

// TextInput carries the student's text verbatim.
type TextInput struct {
	Text string
}

func (AudioInput) Modality() Modality { return ModalityAudio }
func (ImageInput) Modality() Modality { return ModalityImage }
func (TextInput) Modality() Modality  { return ModalityText }

func (AudioInput) isInput() {}
func (ImageInput) isInput() {}
func (TextInput) isInput()  {}

// Resolve picks the authoritative input of a request. Audio wins over
// image, image over text; the first non-empty field is selected.
func Resolve(req Request) (Input, error) {
	switch {
	case req.AudioBase64 != "":
		return AudioInput{Encoded: req.AudioBase64}, nil
	case req.ImageBase64 != "":
		return ImageInput{Encoded: req.ImageBase64}, nil
	case req.Text != "":
		return TextInput{Text: req.Text}, nil
	default:
		return nil, Errorf(NoInputProvided, "please provide at least one of: text, image_base64, audio_base64")
	}
}
