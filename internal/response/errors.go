package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly  ErrCode = "STUDENT_ACCESS_ONLY"
	ErrInstructorOnly     ErrCode = "INSTRUCTOR_ACCESS_ONLY"
	ErrAdminAccessOnly    ErrCode = "ADMIN_ACCESS_ONLY"
	ErrNotAllowedForExam  ErrCode = "NOT_ALLOWED_FOR_EXAM"
	ErrPasswordRequired   ErrCode = "EXAM_PASSWORD_REQUIRED"
	ErrPasswordMismatch   ErrCode = "EXAM_PASSWORD_MISMATCH"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation          ErrCode = "VALIDATION_ERROR"
	ErrInvalidID           ErrCode = "INVALID_ID"
	ErrInvalidOptions      ErrCode = "INVALID_OPTIONS"
	ErrInvalidAnswerIndex  ErrCode = "INVALID_ANSWER_INDEX"
	ErrMalformedSubmission ErrCode = "MALFORMED_SUBMISSION"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrAlreadyAttempted   ErrCode = "EXAM_ALREADY_ATTEMPTED"
	ErrScheduleClash      ErrCode = "SCHEDULE_CLASH"
	ErrDuplicateSet       ErrCode = "DUPLICATE_SET_NUMBER"
	ErrExamStarted        ErrCode = "EXAM_ALREADY_STARTED"
	ErrExamUpcoming       ErrCode = "EXAM_NOT_FINISHED"
	ErrQuestionsNotFound  ErrCode = "QUESTIONS_NOT_FOUND"
	ErrQuestionLocked     ErrCode = "QUESTION_USED_IN_PAST_EXAM"
	ErrQuestionReferenced ErrCode = "QUESTION_STILL_REFERENCED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrInstructorOnly:
		return "This resource is restricted to instructors."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrNotAllowedForExam:
		return "You are not allowed to take this exam."
	case ErrPasswordRequired:
		return "This exam requires a password."
	case ErrPasswordMismatch:
		return "Invalid exam password."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidOptions:
		return "A question needs at least two distinct options."
	case ErrInvalidAnswerIndex:
		return "The answer index does not match any option."
	case ErrMalformedSubmission:
		return "The answer sheet does not match the exam's question count."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrAlreadyAttempted:
		return "You have already attempted this exam."
	case ErrScheduleClash:
		return "Another set is already scheduled at this exact time."
	case ErrDuplicateSet:
		return "This set number already exists for the exam."
	case ErrExamStarted:
		return "The exam has already started and can no longer be changed."
	case ErrExamUpcoming:
		return "This is not available until the exam has finished."
	case ErrQuestionsNotFound:
		return "Some referenced questions were not found."
	case ErrQuestionLocked:
		return "This question was used in a past exam and cannot be edited."
	case ErrQuestionReferenced:
		return "This question is still referenced by an exam set."

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
