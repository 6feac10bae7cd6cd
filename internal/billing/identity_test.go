package billing

import (
	"errors"
	"testing"
)

func TestProductIdentity(t *testing.T) {
	tests := []struct {
		name        string
		serviceCode string
		productName string
		want        string
		wantErr     error
	}{
		{
			name:        "service code wins",
			serviceCode: "AmazonEC2",
			productName: "Amazon Elastic Compute Cloud",
			want:        "AmazonEC2",
		},
		{
			name:        "falls back to product name",
			serviceCode: "",
			productName: "Amazon Elastic Compute Cloud",
			want:        "Amazon Elastic Compute Cloud",
		},
		{
			name:        "service code alone",
			serviceCode: "AmazonS3",
			want:        "AmazonS3",
		},
		{
			name:    "both empty fails",
			wantErr: ErrAmbiguousProductIdentity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProductIdentity(UsageLine{
				PayerAccountID: 1,
				InvoiceID:      2,
				ServiceCode:    tt.serviceCode,
				ProductName:    tt.productName,
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected identity %q, got %q", tt.want, got)
			}
		})
	}
}
