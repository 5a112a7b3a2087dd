package workflow

// Evidence 实地勘验证据的载荷守卫字段
// submit_validation 要求至少一张照片、访问日期和物业类型分类
type Evidence struct {
	PhotoCount   int
	VisitDate    string
	PropertyType string
}

// ValidateEvidence 校验勘验证据完整性
// 失败返回 TransitionError 并指出缺失字段,状态保持不变
func ValidateEvidence(e Evidence) error {
	if e.PhotoCount < 1 {
		return NewTransitionError("photos", "at least one site photo is required")
	}
	if e.VisitDate == "" {
		return NewTransitionError("visit_date", "visit date is required")
	}
	if e.PropertyType == "" {
		return NewTransitionError("property_type", "property type classification is required")
	}
	return nil
}

// Measurements 录入数据的载荷守卫字段
// submit_property_data 要求面积、建筑类型和评估价值全部存在
type Measurements struct {
	Area             float64
	ConstructionType string
	EstimatedValue   float64
}

// ValidateMeasurements 校验测量与估值完整性
func ValidateMeasurements(m Measurements) error {
	if m.Area <= 0 {
		return NewTransitionError("area", "area must be present and positive")
	}
	if m.ConstructionType == "" {
		return NewTransitionError("construction_type", "construction type is required")
	}
	if m.EstimatedValue <= 0 {
		return NewTransitionError("estimated_value", "estimated value must be present and positive")
	}
	return nil
}
