package httpapi

import "net/http"

// CombinedHandler multiplexes the S3 and DynamoDB wire surfaces onto one
// listener, the way a single local endpoint (one port) serves every AWS
// service in practice: DynamoDB's JSON protocol always POSTs to "/" with an
// X-Amz-Target header naming the operation, a shape S3 never produces
// (S3's root route is GET-only, for ListBuckets), so that header's
// presence is an unambiguous discriminator.
func CombinedHandler(s3 *S3Router, dynamo *DynamoRouter) http.Handler {
	s3Handler := s3.Handler()
	dynamoHandler := dynamo.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Amz-Target") != "" {
			dynamoHandler.ServeHTTP(w, r)
			return
		}
		s3Handler.ServeHTTP(w, r)
	})
}
