package openai

import (
	"errors"
	"testing"

	"github.com/johnwlockwood/knowledge-graph/internal/domain/entity"
)

func TestParseGraphEntityLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
		check   func(t *testing.T, got any)
	}{
		{
			name: "node",
			line: `{"type":"node","entity":{"id":1,"label":"Quantum Physics","color":"#4A90D9"}}`,
			check: func(t *testing.T, got any) {
				ge := got.(*entity.GraphEntity)
				if ge.Type != entity.KindNode {
					t.Fatalf("type = %s", ge.Type)
				}
				n := ge.Entity.(*entity.Node)
				if n.ID != 1 || n.Label != "Quantum Physics" {
					t.Fatalf("node = %+v", n)
				}
			},
		},
		{
			name: "edge",
			line: `{"type":"edge","entity":{"source":1,"target":2,"label":"studies","color":"gray"}}`,
			check: func(t *testing.T, got any) {
				ge := got.(*entity.GraphEntity)
				e := ge.Entity.(*entity.Edge)
				if e.Source != 1 || e.Target != 2 || e.Label != "studies" {
					t.Fatalf("edge = %+v", e)
				}
			},
		},
		{
			name: "edge color defaults to black",
			line: `{"type":"edge","entity":{"source":1,"target":2,"label":"studies"}}`,
			check: func(t *testing.T, got any) {
				e := got.(*entity.GraphEntity).Entity.(*entity.Edge)
				if e.Color != "black" {
					t.Fatalf("color = %q, want black", e.Color)
				}
			},
		},
		{
			name:    "unknown kind",
			line:    `{"type":"hyperedge","entity":{"id":1}}`,
			wantErr: errUnknownKind,
		},
		{
			name:    "known kind malformed payload",
			line:    `{"type":"node","entity":{"id":"not-an-int","label":"x"}}`,
			wantErr: errMalformed,
		},
		{
			name:    "node without label",
			line:    `{"type":"node","entity":{"id":3,"color":"red"}}`,
			wantErr: errMalformed,
		},
		{
			name:    "not json",
			line:    `Sure! Here is your graph:`,
			wantErr: errMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGraphEntityLine([]byte(tt.line))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, got)
		})
	}
}

func TestParseUserLine(t *testing.T) {
	got, err := parseUserLine([]byte(`{"name":"Leia Organa","age":23}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u := got.(*entity.UserRecord)
	if u.Name != "Leia Organa" || u.Age != 23 {
		t.Fatalf("user = %+v", u)
	}

	if _, err := parseUserLine([]byte(`{"age":23}`)); !errors.Is(err, errMalformed) {
		t.Fatalf("nameless user: err = %v, want malformed", err)
	}
	if _, err := parseUserLine([]byte(`garbage`)); !errors.Is(err, errMalformed) {
		t.Fatalf("garbage: err = %v, want malformed", err)
	}
}
