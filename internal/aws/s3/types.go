package s3

// S3Object is one listed object.
type S3Object struct {
	Key  string
	Size int64
}

type ListObjectsResult struct {
	Objects   []S3Object
	NextToken string
}
