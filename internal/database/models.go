package database

// StoredSession keeps the bearer token for one backend between runs.
type StoredSession struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	APIURL    string `gorm:"uniqueIndex;not null"`
	Token     string `gorm:"not null"`
	Username  string
	CreatedAt int64 `gorm:"not null"`
	UpdatedAt int64
}

type ActionRecord struct {
	ID                  string `gorm:"primaryKey"`
	Kind                string `gorm:"not null"`
	AppName             string `gorm:"not null;index"`
	DeploymentName      string
	DeploymentNamespace string
	TargetKey           string `gorm:"not null;index"`
	Outcome             string `gorm:"not null"`
	Message             string
	RequestedAt         int64 `gorm:"not null;index"`
	CompletedAt         int64
}
