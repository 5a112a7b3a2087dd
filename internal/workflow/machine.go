package workflow

import "fmt"

// Status 产权文件状态
type Status string

const (
	StatusPending      Status = "pending"
	StatusValidation   Status = "validation"
	StatusDataEntry    Status = "data-entry"
	StatusVerification Status = "verification"
	StatusReadyToPrint Status = "ready-to-print"
	StatusCompleted    Status = "completed"
	StatusOnHold       Status = "on-hold"
	StatusCancelled    Status = "cancelled"
)

// AllStatuses 所有合法状态
var AllStatuses = []Status{
	StatusPending,
	StatusValidation,
	StatusDataEntry,
	StatusVerification,
	StatusReadyToPrint,
	StatusCompleted,
	StatusOnHold,
	StatusCancelled,
}

// Valid 判断是否为合法状态值
func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal 判断是否为终态
// 终态不接受任何后续事件
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Event 状态转换事件
type Event string

const (
	EventSubmitValidation   Event = "submit_validation"
	EventSubmitPropertyData Event = "submit_property_data"
	EventApprove            Event = "approve"
	EventReject             Event = "reject"
	EventMarkPrinted        Event = "mark_printed"
	EventHold               Event = "hold"
	EventResume             Event = "resume"
	EventCancel             Event = "cancel"
)

// Role 用户角色
type Role string

const (
	RoleCoordinator  Role = "coordinator"
	RoleValidator    Role = "validator"
	RoleKeyIn        Role = "key-in"
	RoleVerification Role = "verification"
	RoleAdmin        Role = "admin"
)

// AllRoles 所有合法角色
var AllRoles = []Role{RoleCoordinator, RoleValidator, RoleKeyIn, RoleVerification, RoleAdmin}

// Valid 判断是否为合法角色值
func (r Role) Valid() bool {
	for _, v := range AllRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Actor 触发转换的已认证用户
// 身份由上层显式传入,状态机不读取任何环境状态
type Actor struct {
	ID   string
	Role Role
}

// Snapshot 文件的状态机相关字段快照
// 由服务层从持久化记录构造,写入时以 Status 作为乐观并发前置条件
type Snapshot struct {
	Status                Status
	PreviousStatus        Status // on-hold 之前的状态,resume 时恢复
	CoordinatorID         string
	ValidatorID           string
	KeyInOperatorID       string
	VerificationOfficerID string
}

// assignment 指派到文件的角色字段
// 为空表示该规则不要求指派匹配
type assignment int

const (
	assignNone assignment = iota
	assignValidator
	assignKeyIn
	assignVerification
)

// rule 单条转换规则: 事件 + 守卫 -> 目标状态
type rule struct {
	from           Status // 为空表示任意非终态
	event          Event
	to             Status // 为空表示恢复到 PreviousStatus
	roles          []Role
	mustBeAssigned assignment
}

// transitions 转换表
// 非表内的 (状态, 事件) 组合一律拒绝,非法转换在结构上不可表达
var transitions = []rule{
	{from: StatusValidation, event: EventSubmitValidation, to: StatusDataEntry,
		roles: []Role{RoleValidator}, mustBeAssigned: assignValidator},
	{from: StatusDataEntry, event: EventSubmitPropertyData, to: StatusVerification,
		roles: []Role{RoleKeyIn}, mustBeAssigned: assignKeyIn},
	{from: StatusVerification, event: EventApprove, to: StatusReadyToPrint,
		roles: []Role{RoleVerification}, mustBeAssigned: assignVerification},
	{from: StatusVerification, event: EventReject, to: StatusDataEntry,
		roles: []Role{RoleVerification}, mustBeAssigned: assignVerification},
	{from: StatusReadyToPrint, event: EventMarkPrinted, to: StatusCompleted,
		roles: []Role{RoleVerification, RoleAdmin}, mustBeAssigned: assignVerification},
	{event: EventHold, to: StatusOnHold,
		roles: []Role{RoleCoordinator, RoleAdmin}},
	{from: StatusOnHold, event: EventResume,
		roles: []Role{RoleCoordinator, RoleAdmin}},
	{event: EventCancel, to: StatusCancelled,
		roles: []Role{RoleAdmin}},
}

// Machine 产权文件工作流状态机
// 纯决策逻辑,不持有任何可变状态,可安全并发使用
type Machine struct{}

// NewMachine 创建状态机
func NewMachine() *Machine {
	return &Machine{}
}

// Next 计算事件触发后的目标状态
// 返回值错误分类:
//   - (状态, 事件) 不在转换表中 -> ErrInvalidTransition
//   - 角色或指派不匹配 -> ErrForbidden
//
// 守卫全部通过时返回目标状态,由调用方以当前状态为前置条件原子写入
func (m *Machine) Next(snap Snapshot, ev Event, actor Actor) (Status, error) {
	if !snap.Status.Valid() {
		return "", NewTransitionError("status", fmt.Sprintf("unknown status %q", snap.Status))
	}

	r, ok := m.match(snap, ev)
	if !ok {
		if snap.Status.Terminal() {
			return "", NewTransitionError("", fmt.Sprintf("file is %s and accepts no further events", snap.Status))
		}
		return "", NewTransitionError("", fmt.Sprintf("event %q not allowed in status %q", ev, snap.Status))
	}

	if err := m.checkActor(r, snap, actor); err != nil {
		return "", err
	}

	if r.to == "" {
		// resume: 回到挂起前的状态
		prev := snap.PreviousStatus
		if prev == "" || !prev.Valid() || prev.Terminal() || prev == StatusOnHold {
			return "", NewTransitionError("previous_status", "no resumable previous status recorded")
		}
		return prev, nil
	}
	return r.to, nil
}

// match 在转换表中查找匹配的规则
func (m *Machine) match(snap Snapshot, ev Event) (rule, bool) {
	for _, r := range transitions {
		if r.event != ev {
			continue
		}
		if r.from == "" {
			// 任意非终态;挂起中的文件不能再次挂起,否则会丢失 previous_status
			if snap.Status.Terminal() {
				continue
			}
			if ev == EventHold && snap.Status == StatusOnHold {
				continue
			}
			return r, true
		}
		if r.from == snap.Status {
			return r, true
		}
	}
	return rule{}, false
}

// checkActor 校验角色与指派守卫
func (m *Machine) checkActor(r rule, snap Snapshot, actor Actor) error {
	if actor.ID == "" {
		return ErrUnauthenticated
	}

	roleOK := false
	for _, role := range r.roles {
		if actor.Role == role {
			roleOK = true
			break
		}
	}
	if !roleOK {
		return &ForbiddenError{Reason: fmt.Sprintf("role %q may not trigger %q", actor.Role, r.event)}
	}

	// admin 可以作为自动完成触发器执行 mark_printed,不要求指派匹配
	if actor.Role == RoleAdmin {
		return nil
	}

	// 指派字段为空时放行(文件尚未指派该角色),非空时必须匹配
	var assigned string
	switch r.mustBeAssigned {
	case assignValidator:
		assigned = snap.ValidatorID
	case assignKeyIn:
		assigned = snap.KeyInOperatorID
	case assignVerification:
		assigned = snap.VerificationOfficerID
	default:
		return nil
	}
	if assigned != "" && assigned != actor.ID {
		return &ForbiddenError{Reason: fmt.Sprintf("actor %q is not the assigned %s", actor.ID, actor.Role)}
	}
	return nil
}
