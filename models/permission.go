package models

// Well-known capability names
const (
	PermissionAdmin                            = "Admin"
	PermissionUserRegister                     = "User.Register"
	PermissionUserGetAll                       = "User.GetAll"
	PermissionCourthouseCreate                 = "Courthouse.Create"
	PermissionTitleCreate                      = "Title.Create"
	PermissionTransferRequestTypeCreate        = "TransferRequestType.Create"
	PermissionPermissionCreate                 = "Permission.Create"
	PermissionUserPermissionClaimCreate        = "UserPermissionClaim.Create"
	PermissionUserPermissionClaimDelete        = "UserPermissionClaim.Delete"
	PermissionLogEntryGetAll                   = "LogEntry.GetAll"
	PermissionTransferRequestGetAllUsers       = "TransferRequest.GetAllUsers"
	PermissionTransferRequestUpdateApproveStat = "TransferRequest.UpdateApproveStatus"
)

// DefaultPermissions are seeded so administrators can grant them
var DefaultPermissions = []string{
	PermissionAdmin,
	PermissionUserRegister,
	PermissionUserGetAll,
	PermissionCourthouseCreate,
	PermissionTitleCreate,
	PermissionTransferRequestTypeCreate,
	PermissionPermissionCreate,
	PermissionUserPermissionClaimCreate,
	PermissionUserPermissionClaimDelete,
	PermissionLogEntryGetAll,
	PermissionTransferRequestGetAllUsers,
	PermissionTransferRequestUpdateApproveStat,
}

// Permission is a named capability
type Permission struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

// TableName specifies the table name
func (Permission) TableName() string {
	return "permissions"
}

// UserPermissionClaim grants one Permission to one User. Removing either side
// removes the grant.
type UserPermissionClaim struct {
	ID           uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint `gorm:"not null;uniqueIndex:idx_user_permission" json:"user_id"`
	PermissionID uint `gorm:"not null;uniqueIndex:idx_user_permission" json:"permission_id"`

	User       *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Permission *Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (UserPermissionClaim) TableName() string {
	return "user_permission_claims"
}
