package errx

// 这里定义“跨模块统一”的系统类错误码。
//
// 约束：
// - 内容/配置错误与运行期不变量错误都属于系统类，需要带上下文（terrain/layer/pos）方便排障
// - 各领域自己的错误码由领域包定义，不在 kit 里集中

const (
	// CodeInternal 表示不可预期的内部错误（兜底）。
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable 表示依赖不可用（MongoDB/MySQL 等）。
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	// CodeContentInvalid 表示地形/地图内容定义不合法，加载时直接失败。
	CodeContentInvalid Code = "CONTENT_INVALID"
	// CodeTileInvariant 表示瓦片状态违反不变量（例如需要地形的地方拿到了空地形）。
	CodeTileInvariant Code = "TILE_INVARIANT"
	// CodeNotFound 表示按 id 查找的对象不存在。
	CodeNotFound Code = "NOT_FOUND"
	// 请求参数错误
	CodeReqParamError Code = "CODE_REQ_PARAM_ERROR"
)

// 统一系统类哨兵错误（允许 WithData/WithCause 派生新对象）。
var (
	ErrInternal       = NewSys(CodeInternal, "内部错误")
	ErrUnavailable    = NewSys(CodeUnavailable, "依赖不可用")
	ErrContentInvalid = NewSys(CodeContentInvalid, "内容定义不合法")
	ErrTileInvariant  = NewSys(CodeTileInvariant, "瓦片不变量被破坏")
	ErrNotFound       = NewBiz(CodeNotFound, "对象不存在")
	ErrReqParamERR    = NewBiz(CodeReqParamError, "请求参数错误")
)
