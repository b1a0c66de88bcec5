package factory

import (
	"cmp"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/kendra"
	"github.com/knights-analytics/hugot"
	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"

	bedrockAdapter "github.com/RichardKnop/ragchat/adapter/bedrock"
	kendraAdapter "github.com/RichardKnop/ragchat/adapter/kendra"
	openaiAdapter "github.com/RichardKnop/ragchat/adapter/openai"
)

func (f *Factory) awsConfig(ctx context.Context, region string) (aws.Config, error) {
	if region == "" {
		return aws.Config{}, fmt.Errorf("aws region not configured")
	}
	return cached(f, "aws:"+region, func() (aws.Config, error) {
		// Failed calls are reported straight to the user, never retried.
		return awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
			awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
		)
	})
}

func (f *Factory) bedrockClient(ctx context.Context) (bedrockAdapter.API, error) {
	if f.bedrock != nil {
		return f.bedrock, nil
	}
	region := cmp.Or(f.cfg.AWS.BedrockRegion, f.cfg.AWS.Region)
	cfg, err := f.awsConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return cached(f, "bedrock:"+region, func() (bedrockAdapter.API, error) {
		return bedrockruntime.NewFromConfig(cfg), nil
	})
}

func (f *Factory) kendraClient(ctx context.Context, region string) (kendraAdapter.API, error) {
	if f.kendra != nil {
		return f.kendra, nil
	}
	region = cmp.Or(region, f.cfg.AWS.KendraRegion, f.cfg.AWS.Region)
	cfg, err := f.awsConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return cached(f, "kendra:"+region, func() (kendraAdapter.API, error) {
		return kendra.NewFromConfig(cfg), nil
	})
}

func (f *Factory) openaiClient() (openai.Client, error) {
	if f.cfg.OpenAI.APIKey == "" {
		return openai.Client{}, fmt.Errorf("openai api key not configured")
	}
	return cached(f, "openai", func() (openai.Client, error) {
		return openaiAdapter.NewClient(f.cfg.OpenAI.APIKey, f.cfg.OpenAI.BaseURL), nil
	})
}

func (f *Factory) genaiClient(ctx context.Context) (*genai.Client, error) {
	if f.cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}
	return cached(f, "google-genai", func() (*genai.Client, error) {
		return genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      f.cfg.Gemini.APIKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{BaseURL: f.cfg.Gemini.BaseURL},
		})
	})
}

func (f *Factory) hugotSession() (*hugot.Session, error) {
	return cached(f, "hugot:session", func() (*hugot.Session, error) {
		session, err := hugot.NewGoSession()
		if err != nil {
			return nil, fmt.Errorf("hugot session: %w", err)
		}
		f.onClose(session.Destroy)
		return session, nil
	})
}
