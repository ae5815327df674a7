package mainconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/fixitsanclemente/quote-intake/internal/config"
)

func TestEndpointOverrideRoutesKnownServices(t *testing.T) {
	resolver := endpointOverride("http://localhost:4566", "us-west-2")

	for _, svc := range []string{dynamodb.ServiceID, sesv2.ServiceID} {
		ep, err := resolver.ResolveEndpoint(svc, "us-west-2")
		if err != nil {
			t.Fatalf("%s: unexpected error %v", svc, err)
		}
		if ep.URL != "http://localhost:4566" || ep.SigningRegion != "us-west-2" {
			t.Fatalf("%s: unexpected endpoint %+v", svc, ep)
		}
	}

	_, err := resolver.ResolveEndpoint("S3", "us-west-2")
	var notFound *aws.EndpointNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected EndpointNotFoundError for unlisted service, got %v", err)
	}
}

func TestLoadAWSConfigStaticCredentials(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	cfg := &appconfig.Config{
		AWSRegion:           "us-west-2",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "secret",
		AWSEndpointOverride: "http://localhost:4566",
	}

	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if awsCfg.Region != "us-west-2" {
		t.Fatalf("expected region us-west-2, got %q", awsCfg.Region)
	}
	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("retrieve credentials: %v", err)
	}
	if creds.AccessKeyID != "test" {
		t.Fatalf("expected static credentials, got %q", creds.AccessKeyID)
	}
	if awsCfg.EndpointResolverWithOptions == nil {
		t.Fatalf("expected endpoint override resolver")
	}
}
