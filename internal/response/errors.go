package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Attempt lifecycle ─────────────────────────────────────────────
	ErrTestAlreadySubmitted ErrCode = "TEST_ALREADY_SUBMITTED"

	// ─── Proctoring start gate ─────────────────────────────────────────
	ErrClassifierLoad   ErrCode = "CLASSIFIER_LOAD_FAILED"
	ErrCameraDenied     ErrCode = "CAMERA_ACCESS_DENIED"
	ErrNoFaceDetected   ErrCode = "NO_FACE_DETECTED"
	ErrFullscreenDenied ErrCode = "FULLSCREEN_UNAVAILABLE"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The provided identifier is invalid."
	case ErrInvalidPayload:
		return "The request payload could not be parsed."
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrTestAlreadySubmitted:
		return "The test has already been submitted."
	case ErrClassifierLoad:
		return "Failed to load the face detection models."
	case ErrCameraDenied:
		return "Camera access was denied. Grant camera permissions and try again."
	case ErrNoFaceDetected:
		return "No face was detected. Position yourself in front of the camera."
	case ErrFullscreenDenied:
		return "Fullscreen mode is required to take the test."
	case ErrInternal:
		return "An internal error occurred. Please try again later."
	default:
		return "An unknown error occurred."
	}
}
