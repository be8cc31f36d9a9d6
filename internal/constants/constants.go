package constants

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskGiftExpirySweep = "gift:expiry_sweep"
	TaskClaimReconcile  = "claim:reconcile"
)

// Frame 按钮序号常量
const (
	FrameButtonClaim  = 1
	FrameButtonStatus = 2
	FrameButtonShare  = 3
)

// 链环境常量
const (
	ChainEnvBase        = "base"
	ChainEnvBaseSepolia = "sepolia"
)
