package sysconfig

// approvalGroupValue mirrors the stored JSON: five sparse approver slots,
// empty string meaning unassigned. Slot order is the approval order.
type approvalGroupValue struct {
	GroupName string `json:"groupName"`
	Approver1 string `json:"approver1"`
	Approver2 string `json:"approver2"`
	Approver3 string `json:"approver3"`
	Approver4 string `json:"approver4"`
	Approver5 string `json:"approver5"`
}

// ApprovalGroup is the parsed form handed to the workflow engine.
// ApproverIDs keeps the configured order with empty slots removed.
type ApprovalGroup struct {
	ID          int64
	Name        string
	ApproverIDs []int64
}

type Classification struct {
	Key  string `json:"key"`
	Code int64  `json:"code"`
	Name string `json:"name"`
}

type ApplicationType struct {
	Code            int64            `json:"type"`
	Name            string           `json:"name"`
	Format          string           `json:"format"`
	Classifications []Classification `json:"classifications"`
}

type ApplicationTypes []ApplicationType

// Format returns the format of the given type code, or "" when unknown.
func (ts ApplicationTypes) Format(typeCode int64) string {
	for _, t := range ts {
		if t.Code == typeCode {
			return t.Format
		}
	}
	return ""
}

// TypeName returns the display name of the given type code.
func (ts ApplicationTypes) TypeName(typeCode int64) string {
	for _, t := range ts {
		if t.Code == typeCode {
			return t.Name
		}
	}
	return ""
}

// ClassificationName returns the display name of a classification code
// within the given type.
func (ts ApplicationTypes) ClassificationName(typeCode, classificationCode int64) string {
	for _, t := range ts {
		if t.Code != typeCode {
			continue
		}
		for _, c := range t.Classifications {
			if c.Code == classificationCode {
				return c.Name
			}
		}
	}
	return ""
}

// ClassificationCode resolves a classification key (e.g. ALL_DAYS) to its
// configured code within the given type. Returns -1 when not configured.
func (ts ApplicationTypes) ClassificationCode(typeCode int64, key string) int64 {
	for _, t := range ts {
		if t.Code != typeCode {
			continue
		}
		for _, c := range t.Classifications {
			if c.Key == key {
				return c.Code
			}
		}
	}
	return -1
}
