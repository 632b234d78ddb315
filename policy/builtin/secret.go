package builtin

import (
	"context"
	"fmt"

	"github.com/viant/hamal/model/action"
	"github.com/viant/hamal/policy"
	"github.com/viant/scy"
	"github.com/viant/scy/cred"
	_ "github.com/viant/scy/kms/blowfish"
	"github.com/viant/toolbox"
)

type secretParams struct {
	URL    string `json:"url"`
	Key    string `json:"key"`
	Target string `json:"target"`
	As     string `json:"as"`
}

// newSecret loads the secret once and exposes it in the request meta
func newSecret(ctx context.Context, builder *Builder, config *policy.Config) (policy.Func, error) {
	params := &secretParams{}
	if err := builder.Params(config, params); err != nil {
		return nil, err
	}
	if params.URL == "" {
		return nil, fmt.Errorf("secret url was empty")
	}
	if params.As == "" {
		params.As = "credentials"
	}
	value, err := loadSecret(ctx, builder.secrets, params)
	if err != nil {
		return nil, err
	}
	return func(store policy.Store, done policy.Done) policy.Done {
		return func(anAction *action.Action, err error, response interface{}) {
			done(anAction.WithMeta(anAction.Meta.With(params.As, value)), err, response)
		}
	}, nil
}

func loadSecret(ctx context.Context, secrets *scy.Service, params *secretParams) (interface{}, error) {
	var target interface{}
	if params.Target != "" && params.Target != "raw" {
		targetType, err := cred.TargetType(params.Target)
		if err != nil {
			return nil, fmt.Errorf("invalid target type '%s': %w", params.Target, err)
		}
		if targetType != nil {
			target = targetType
		}
	}
	resource := scy.NewResource(target, params.URL, params.Key)
	secret, err := secrets.Load(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("failed to load secret from %s: %w", params.URL, err)
	}
	if secret.IsPlain || secret.Target == nil {
		return secret.String(), nil
	}
	aMap := map[string]interface{}{}
	if err := toolbox.DefaultConverter.AssignConverted(&aMap, secret.Target); err != nil {
		return nil, fmt.Errorf("failed to convert secret data: %w", err)
	}
	return toolbox.DeleteEmptyKeys(aMap), nil
}
