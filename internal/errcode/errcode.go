package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：输入或资源问题（例如照片资源缺失但导出可继续）
// - 5xxx：系统错误（需要中断流程）
const (
	OK                  = 0
	ResourceMissing     = 4004
	InvalidDocument     = 4022
	SystemError         = 5000
	TemplateUnavailable = 5001
)
