package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidSetting ErrCode = "INVALID_SETTING"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound            ErrCode = "NOT_FOUND"
	ErrConflict            ErrCode = "CONFLICT"
	ErrCourseNotFound      ErrCode = "COURSE_NOT_FOUND"
	ErrParagraphOutOfRange ErrCode = "PARAGRAPH_OUT_OF_RANGE"
	ErrEmptyText           ErrCode = "EMPTY_TEXT"

	// ─── Providers ─────────────────────────────────────────────────────
	ErrProviderConfig    ErrCode = "PROVIDER_CONFIG"
	ErrProviderTransport ErrCode = "PROVIDER_TRANSPORT"
	ErrProviderError     ErrCode = "PROVIDER_ERROR"
	ErrGenerationParse   ErrCode = "GENERATION_PARSE"

	// ─── Audio ─────────────────────────────────────────────────────────
	ErrAudioUnplayable ErrCode = "AUDIO_UNPLAYABLE"

	// ─── Quiz ──────────────────────────────────────────────────────────
	ErrQuizNotFound        ErrCode = "QUIZ_NOT_FOUND"
	ErrQuizNotActive       ErrCode = "QUIZ_NOT_ACTIVE"
	ErrQuizAlreadyAnswered ErrCode = "QUIZ_ALREADY_ANSWERED"
	ErrQuizNotAnswered     ErrCode = "QUIZ_NOT_ANSWERED"
	ErrQuizInvalidOption   ErrCode = "QUIZ_INVALID_OPTION"
	ErrQuizNotReview       ErrCode = "QUIZ_NOT_REVIEW"
	ErrQuizNoSource        ErrCode = "QUIZ_NO_SOURCE"
	ErrQuizNothingToReview ErrCode = "QUIZ_NOTHING_TO_REVIEW"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a learner-facing message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "邮箱或密码错误。"
	case ErrEmailTaken:
		return "该邮箱已被注册。"
	case ErrTokenRequired:
		return "需要身份验证令牌。"
	case ErrTokenInvalid:
		return "身份验证令牌无效或已过期。"

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "输入校验失败，请检查后重试。"
	case ErrInvalidID:
		return "ID 格式无效。"
	case ErrInvalidPayload:
		return "请求内容无效。"
	case ErrInvalidSetting:
		return "设置值无效。"

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "未找到该资源。"
	case ErrConflict:
		return "该资源已存在。"
	case ErrCourseNotFound:
		return "未找到该课程。"
	case ErrParagraphOutOfRange:
		return "段落序号超出范围。"
	case ErrEmptyText:
		return "没有可朗读的文本。"

	// ─── Providers ─────────────────────────────────────────────────────
	case ErrProviderConfig:
		return "AI 服务未配置，请检查 API 密钥。"
	case ErrProviderTransport:
		return "无法连接 AI 服务，请检查网络后重试。"
	case ErrProviderError:
		return "AI 服务返回错误，请稍后重试。"
	case ErrGenerationParse:
		return "生成的内容格式有误，请重新生成。"

	// ─── Audio ─────────────────────────────────────────────────────────
	case ErrAudioUnplayable:
		return "音频无法播放。"

	// ─── Quiz ──────────────────────────────────────────────────────────
	case ErrQuizNotFound:
		return "测验不存在或已结束。"
	case ErrQuizNotActive:
		return "测验当前不可作答。"
	case ErrQuizAlreadyAnswered:
		return "本题已作答。"
	case ErrQuizNotAnswered:
		return "请先回答当前题目。"
	case ErrQuizInvalidOption:
		return "选项无效。"
	case ErrQuizNotReview:
		return "只有复习模式可以标记为已掌握。"
	case ErrQuizNoSource:
		return "该题目没有对应的单词记录。"
	case ErrQuizNothingToReview:
		return "没有需要复习的单词。"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "请求过于频繁，请稍后再试。"

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "服务器内部错误。"
	default:
		return "发生未知错误。"
	}
}
