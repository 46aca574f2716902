package enums

import "fmt"

// QuotationStatus tracks a quotation through its lifecycle.
type QuotationStatus string

const (
	QuotationStatusPending   QuotationStatus = "pending"
	QuotationStatusSent      QuotationStatus = "sent"
	QuotationStatusCancelled QuotationStatus = "cancelled"
)

var validQuotationStatuses = []QuotationStatus{
	QuotationStatusPending,
	QuotationStatusSent,
	QuotationStatusCancelled,
}

func (s QuotationStatus) String() string { return string(s) }

func (s QuotationStatus) IsValid() bool {
	for _, v := range validQuotationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func ParseQuotationStatus(raw string) (QuotationStatus, error) {
	s := QuotationStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid quotation status %q", raw)
	}
	return s, nil
}

// UserRole gates access to administrative surfaces. Managers administer
// the catalog and users; riders create and send quotations.
type UserRole string

const (
	UserRoleManager UserRole = "manager"
	UserRoleRider   UserRole = "rider"
)

var validUserRoles = []UserRole{
	UserRoleManager,
	UserRoleRider,
}

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool {
	for _, v := range validUserRoles {
		if r == v {
			return true
		}
	}
	return false
}

func ParseUserRole(raw string) (UserRole, error) {
	r := UserRole(raw)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid user role %q", raw)
	}
	return r, nil
}

// ActivityAction names the auditable operations in the activity feed.
type ActivityAction string

const (
	ActivityActionLogin            ActivityAction = "login"
	ActivityActionLogout           ActivityAction = "logout"
	ActivityActionProductCreated   ActivityAction = "product_created"
	ActivityActionProductUpdated   ActivityAction = "product_updated"
	ActivityActionProductDeleted   ActivityAction = "product_deleted"
	ActivityActionQuotationCreated ActivityAction = "quotation_created"
	ActivityActionQuotationSent    ActivityAction = "quotation_sent"
	ActivityActionQuotationCancel  ActivityAction = "quotation_cancelled"
	ActivityActionQuotationDeleted ActivityAction = "quotation_deleted"
	ActivityActionQuotationPDF     ActivityAction = "quotation_pdf_exported"
	ActivityActionUserCreated      ActivityAction = "user_created"
	ActivityActionUserUpdated      ActivityAction = "user_updated"
	ActivityActionUserDeactivated  ActivityAction = "user_deactivated"
)

var validActivityActions = []ActivityAction{
	ActivityActionLogin,
	ActivityActionLogout,
	ActivityActionProductCreated,
	ActivityActionProductUpdated,
	ActivityActionProductDeleted,
	ActivityActionQuotationCreated,
	ActivityActionQuotationSent,
	ActivityActionQuotationCancel,
	ActivityActionQuotationDeleted,
	ActivityActionQuotationPDF,
	ActivityActionUserCreated,
	ActivityActionUserUpdated,
	ActivityActionUserDeactivated,
}

func (a ActivityAction) String() string { return string(a) }

func (a ActivityAction) IsValid() bool {
	for _, v := range validActivityActions {
		if a == v {
			return true
		}
	}
	return false
}

func ParseActivityAction(raw string) (ActivityAction, error) {
	a := ActivityAction(raw)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid activity action %q", raw)
	}
	return a, nil
}

// ActivityOutcome records whether the audited operation succeeded.
type ActivityOutcome string

const (
	ActivityOutcomeSuccess ActivityOutcome = "success"
	ActivityOutcomeFailure ActivityOutcome = "failure"
)

var validActivityOutcomes = []ActivityOutcome{
	ActivityOutcomeSuccess,
	ActivityOutcomeFailure,
}

func (o ActivityOutcome) String() string { return string(o) }

func (o ActivityOutcome) IsValid() bool {
	for _, v := range validActivityOutcomes {
		if o == v {
			return true
		}
	}
	return false
}

func ParseActivityOutcome(raw string) (ActivityOutcome, error) {
	o := ActivityOutcome(raw)
	if !o.IsValid() {
		return "", fmt.Errorf("invalid activity outcome %q", raw)
	}
	return o, nil
}
