package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"

	appconfig "github.com/fixitsanclemente/quote-intake/internal/config"
)

// ErrAWSUnavailable is returned when a component needs AWS but no loader
// was supplied.
var ErrAWSUnavailable = errors.New("bootstrap: aws config loader not provided")

// AWSConfigLoader builds the shared SDK config (see cmd/mainconfig).
type AWSConfigLoader func(ctx context.Context, cfg *appconfig.Config) (aws.Config, error)

// awsProvider loads the SDK config at most once, on first use.
type awsProvider struct {
	cfg  *appconfig.Config
	load AWSConfigLoader

	once   sync.Once
	awsCfg aws.Config
	err    error
}

func newAWSProvider(cfg *appconfig.Config, load AWSConfigLoader) *awsProvider {
	return &awsProvider{cfg: cfg, load: load}
}

func (p *awsProvider) Get(ctx context.Context) (aws.Config, error) {
	if p == nil || p.load == nil {
		return aws.Config{}, ErrAWSUnavailable
	}
	p.once.Do(func() {
		p.awsCfg, p.err = p.load(ctx, p.cfg)
		if p.err != nil {
			p.err = fmt.Errorf("bootstrap: load aws config: %w", p.err)
		}
	})
	return p.awsCfg, p.err
}
