package jobs

import (
	"context"
	"testing"

	"github.com/graphshell/reviewbot/internal/core"
)

func TestValidateRequest(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		ctx     context.Context
		req     *core.ReviewRequest
		wantErr bool
	}{
		{
			name: "Valid PR request",
			ctx:  ctx,
			req:  &core.ReviewRequest{Ref: core.TargetRef{Kind: core.KindPR, Number: 42}},
		},
		{
			name: "Valid issue request with force",
			ctx:  ctx,
			req:  &core.ReviewRequest{Ref: core.TargetRef{Kind: core.KindIssue, Number: 7}, Force: true},
		},
		{
			name:    "Nil context",
			ctx:     nil,
			req:     &core.ReviewRequest{Ref: core.TargetRef{Kind: core.KindPR, Number: 1}},
			wantErr: true,
		},
		{
			name:    "Nil request",
			ctx:     ctx,
			req:     nil,
			wantErr: true,
		},
		{
			name:    "Unknown kind",
			ctx:     ctx,
			req:     &core.ReviewRequest{Ref: core.TargetRef{Kind: "discussion", Number: 1}},
			wantErr: true,
		},
		{
			name:    "Zero number",
			ctx:     ctx,
			req:     &core.ReviewRequest{Ref: core.TargetRef{Kind: core.KindPR, Number: 0}},
			wantErr: true,
		},
		{
			name:    "Negative number",
			ctx:     ctx,
			req:     &core.ReviewRequest{Ref: core.TargetRef{Kind: core.KindIssue, Number: -3}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.ctx, tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
