package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimePDF = "application/pdf"
)

// ContextUserKey is where AuthMiddleware stores the verified claims.
const ContextUserKey = "user"
