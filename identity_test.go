package custody

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/custody/errors"
)

func TestSignerIDValidate(t *testing.T) {
	cases := map[string]struct {
		id      SignerID
		wantErr *errors.Error
	}{
		"valid": {
			id: sequence(32),
		},
		"nil": {
			id:      nil,
			wantErr: errors.ErrInput,
		},
		"too short": {
			id:      SignerID{1, 2, 3},
			wantErr: errors.ErrInput,
		},
		"too long": {
			id:      sequence(33),
			wantErr: errors.ErrInput,
		},
		"reserved zero": {
			id:      make(SignerID, SignerIDLength),
			wantErr: errors.ErrEmpty,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.id.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %+v", err)
				}
			} else if !tc.wantErr.Is(err) {
				t.Fatalf("wrong error class: %+v", err)
			}
		})
	}
}

func sequence(n int) SignerID {
	id := make(SignerID, n)
	for i := range id {
		id[i] = byte(i + 1)
	}
	return id
}

func TestSignerIDCompare(t *testing.T) {
	low := make(SignerID, SignerIDLength)
	low[SignerIDLength-1] = 1
	high := make(SignerID, SignerIDLength)
	high[0] = 1

	if low.Compare(high) >= 0 {
		t.Fatal("big-endian ordering expected")
	}
	if !low.Equals(low) || low.Equals(high) {
		t.Fatal("broken equality")
	}
}

func TestNewAddressIsDeterministic(t *testing.T) {
	a := NewAddress([]byte("payload"))
	b := NewAddress([]byte("payload"))
	if !a.Equals(b) {
		t.Fatalf("address derivation not deterministic: %s != %s", a, b)
	}
	if len(a) != AddressLength {
		t.Fatalf("want %d bytes, got %d", AddressLength, len(a))
	}
	if a.Equals(NewAddress([]byte("other"))) {
		t.Fatal("different payloads must not collide")
	}
}

func TestSignerIDJSONRoundTrip(t *testing.T) {
	id := sequence(32)
	raw, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("marshal: %+v", err)
	}
	var got SignerID
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %+v", err)
	}
	if !id.Equals(got) {
		t.Fatalf("round trip changed the value: %s != %s", id, got)
	}
}
