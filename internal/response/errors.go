package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"
	ErrNotResourceOwner  ErrCode = "NOT_RESOURCE_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrAlreadyDeleted   ErrCode = "ALREADY_DELETED"
	ErrNoFieldsToUpdate ErrCode = "NO_FIELDS_TO_UPDATE"

	// ─── Enrollment ────────────────────────────────────────────────────
	ErrAlreadyEnrolled ErrCode = "ALREADY_ENROLLED"
	ErrNotEnrolled     ErrCode = "NOT_ENROLLED"
	ErrClassInactive   ErrCode = "CLASS_INACTIVE"

	// ─── Assignments ───────────────────────────────────────────────────
	ErrAssignmentInactive ErrCode = "ASSIGNMENT_INACTIVE"
	ErrInvalidDeadline    ErrCode = "INVALID_DEADLINE"
	ErrInvalidLanguage    ErrCode = "INVALID_LANGUAGE"

	// ─── Submissions ───────────────────────────────────────────────────
	ErrDeadlinePassed   ErrCode = "DEADLINE_PASSED"
	ErrResubmission     ErrCode = "RESUBMISSION_NOT_ALLOWED"
	ErrInvalidFileType  ErrCode = "INVALID_FILE_TYPE"
	ErrFileTooLarge     ErrCode = "FILE_TOO_LARGE"
	ErrFileEmpty        ErrCode = "FILE_EMPTY"
	ErrFileRequired     ErrCode = "FILE_REQUIRED"
	ErrStorageFailure   ErrCode = "STORAGE_FAILURE"
	ErrLinkExpired      ErrCode = "DOWNLOAD_LINK_EXPIRED"
	ErrInvalidSignature ErrCode = "INVALID_SIGNATURE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid username/email or password."
	case ErrSessionActive:
		return "You are already logged in on another device."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is not valid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrSessionInvalidated:
		return "This session has been replaced by a login on another device."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrTeacherAccessOnly:
		return "This resource is restricted to teachers."
	case ErrNotResourceOwner:
		return "You are not authorized to manage this resource."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is not valid."
	case ErrInvalidPayload:
		return "The request payload is not valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrAlreadyDeleted:
		return "The resource has already been deleted."
	case ErrNoFieldsToUpdate:
		return "No fields to update."

	// ─── Enrollment ────────────────────────────────────────────────────
	case ErrAlreadyEnrolled:
		return "You are already enrolled in this class."
	case ErrNotEnrolled:
		return "You are not enrolled in this class."
	case ErrClassInactive:
		return "This class is no longer active."

	// ─── Assignments ───────────────────────────────────────────────────
	case ErrAssignmentInactive:
		return "This assignment is no longer active."
	case ErrInvalidDeadline:
		return "The deadline must be in the future."
	case ErrInvalidLanguage:
		return "Invalid programming language. Must be 'python' or 'java'."

	// ─── Submissions ───────────────────────────────────────────────────
	case ErrDeadlinePassed:
		return "The assignment deadline has passed."
	case ErrResubmission:
		return "Resubmission is not allowed for this assignment."
	case ErrInvalidFileType:
		return "The file type is not accepted for this assignment."
	case ErrFileTooLarge:
		return "The file size exceeds the maximum allowed (10 MiB)."
	case ErrFileEmpty:
		return "The uploaded file is empty."
	case ErrFileRequired:
		return "A file upload is required."
	case ErrStorageFailure:
		return "The file could not be stored. Please try again."
	case ErrLinkExpired:
		return "The download link has expired."
	case ErrInvalidSignature:
		return "The download link signature is not valid."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
