package blob

import (
	"errors"
	"testing"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func TestIsObjectMissing(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		missing bool
	}{
		{name: "no such key", err: &s3types.NoSuchKey{}, missing: true},
		{name: "head not found", err: &s3types.NotFound{}, missing: true},
		{name: "generic 404 code", err: &smithy.GenericAPIError{Code: "NotFound"}, missing: true},
		{name: "wrapped by operation", err: &smithy.OperationError{ServiceID: "S3", OperationName: "GetObject", Err: &s3types.NoSuchKey{}}, missing: true},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, missing: false},
		{name: "plain error", err: errors.New("dial tcp: timeout"), missing: false},
	}
	for _, tc := range cases {
		if got := isObjectMissing(tc.err); got != tc.missing {
			t.Fatalf("%s: isObjectMissing = %v, want %v", tc.name, got, tc.missing)
		}
	}
}
