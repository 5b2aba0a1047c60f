package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 行为侧错误：INVALID_INTERACTION, NOT_FOUND
//   - 存储侧错误：NOT_FOUND, UNAVAILABLE
//   - 引擎侧错误：UNAVAILABLE（四路信号全部失败且兜底热门也失败）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "behavior", "catalog"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound           = "NOT_FOUND"           // 资源不存在
	ErrorCodeUnavailable        = "UNAVAILABLE"         // 存储/服务不可用
	ErrorCodeInvalidInteraction = "INVALID_INTERACTION" // 交互事件类型不在封闭枚举内
	ErrorCodeInvalidInput       = "INVALID_INPUT"       // 输入无效
)

// 模块名称常量
const (
	ModuleBehavior = "behavior" // 行为档案模块
	ModuleCatalog  = "catalog"  // 商品目录模块
	ModuleSocial   = "social"   // 社交关系模块
	ModuleEngine   = "engine"   // 推荐引擎模块
)

// 领域错误哨兵值
var (
	// ErrInvalidInteractionKind 表示交互事件类型不被识别，在记录入口处直接拒绝
	ErrInvalidInteractionKind = NewDomainError(ModuleBehavior, ErrorCodeInvalidInteraction, "behavior: invalid interaction kind")

	// ErrProfileNotFound 表示用户行为档案不存在。
	// 推荐读路径不把它当作错误：视为"新用户"，降级为热门推荐。
	ErrProfileNotFound = NewDomainError(ModuleBehavior, ErrorCodeNotFound, "behavior: profile not found")

	// ErrItemNotFound 表示商品不存在
	ErrItemNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: item not found")

	// ErrStoreUnavailable 表示协作方存储超时或失败
	ErrStoreUnavailable = NewDomainError(ModuleEngine, ErrorCodeUnavailable, "engine: store unavailable")
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsProfileNotFound 检查错误是否为行为档案不存在
func IsProfileNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Module == ModuleBehavior && domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsInvalidInteraction 检查错误是否为非法交互类型
func IsInvalidInteraction(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInteraction
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}
