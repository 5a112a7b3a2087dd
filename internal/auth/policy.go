package auth

import "github.com/propflow/propertyflow/internal/workflow"

// Operation 角色策略中的受控操作
type Operation string

const (
	OpFileCreate       Operation = "file.create"
	OpFileRead         Operation = "file.read"
	OpFileValidation   Operation = "file.submit_validation"
	OpFilePropertyData Operation = "file.submit_property_data"
	OpFileVerify       Operation = "file.verify"
	OpFileMarkPrinted  Operation = "file.mark_printed"
	OpFileHold         Operation = "file.hold"
	OpFileCancel       Operation = "file.cancel"
	OpUserManage       Operation = "user.manage"
	OpUserRead         Operation = "user.read"
	OpMasterDataManage Operation = "masterdata.manage"
	OpMasterDataRead   Operation = "masterdata.read"
	OpAuditRead        Operation = "audit.read"
	OpStatsRead        Operation = "stats.read"
)

// permissions 角色到操作集合的静态映射
// 角色互斥且每账号固定,不存在多角色叠加
var permissions = map[workflow.Role]map[Operation]bool{
	workflow.RoleCoordinator: {
		OpFileCreate:     true,
		OpFileRead:       true,
		OpFileHold:       true,
		OpUserRead:       true,
		OpMasterDataRead: true,
		OpStatsRead:      true,
	},
	workflow.RoleValidator: {
		OpFileRead:       true,
		OpFileValidation: true,
		OpMasterDataRead: true,
		OpStatsRead:      true,
	},
	workflow.RoleKeyIn: {
		OpFileRead:         true,
		OpFilePropertyData: true,
		OpMasterDataRead:   true,
		OpStatsRead:        true,
	},
	workflow.RoleVerification: {
		OpFileRead:        true,
		OpFileVerify:      true,
		OpFileMarkPrinted: true,
		OpMasterDataRead:  true,
		OpStatsRead:       true,
	},
	workflow.RoleAdmin: {
		OpFileCreate:       true,
		OpFileRead:         true,
		OpFileMarkPrinted:  true,
		OpFileHold:         true,
		OpFileCancel:       true,
		OpUserManage:       true,
		OpUserRead:         true,
		OpMasterDataManage: true,
		OpMasterDataRead:   true,
		OpAuditRead:        true,
		OpStatsRead:        true,
	},
}

// Allowed 判断角色是否允许执行操作
func Allowed(role workflow.Role, op Operation) bool {
	ops, ok := permissions[role]
	if !ok {
		return false
	}
	return ops[op]
}
