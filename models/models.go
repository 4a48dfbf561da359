package models

// All returns every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&Title{},
		&Courthouse{},
		&User{},
		&Permission{},
		&UserPermissionClaim{},
		&TransferRequestType{},
		&TransferRequestStatus{},
		&TransferRequest{},
		&CourthousePreference{},
		&TransferRequestSource{},
		&LogEntry{},
	}
}
