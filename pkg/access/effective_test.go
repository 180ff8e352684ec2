package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffective_PublicMountAnonymous(t *testing.T) {
	table := ProfileTable{}
	grants := Grants{Public: true}

	p := table.Effective(grants, Identity{})

	require.NotNil(t, p)
	assert.Equal(t, []string{"read"}, p.Actions())
}

func TestEffective_PrivateMountAnonymous(t *testing.T) {
	table := ProfileTable{}
	grants := Grants{
		Users: map[string]GrantSpec{"alice": NewGrantSpec("write")},
	}

	assert.Nil(t, table.Effective(grants, Identity{}))
}

func TestEffective_NoMatchingGrants(t *testing.T) {
	table := ProfileTable{}
	grants := Grants{
		Users:  map[string]GrantSpec{"alice": NewGrantSpec("write")},
		Groups: map[string]GrantSpec{"editors": NewGrantSpec("write")},
	}

	// bob has no user spec and belongs to no matching group.
	assert.Nil(t, table.Effective(grants, Identity{Username: "bob", Groups: []string{"interns"}}))
}

func TestEffective_GroupGrantWithWriteImplication(t *testing.T) {
	table := ProfileTable{}
	grants := Grants{
		Groups: map[string]GrantSpec{"editors": NewGrantSpec("write")},
	}

	p := table.Effective(grants, Identity{Username: "alice", Groups: []string{"editors"}})

	require.NotNil(t, p)
	assert.True(t, p.AllowsWrite())
	assert.True(t, p.AllowsDelete(), "write must imply delete")
}

func TestEffective_UserAndGroupGrantsAreUnioned(t *testing.T) {
	table := ProfileTable{}
	grants := Grants{
		Users: map[string]GrantSpec{"carol": NewGrantSpec("upload")},
		Groups: map[string]GrantSpec{
			"auditors": NewGrantSpec("read"),
			"cleaners": NewGrantSpec("delete"),
		},
	}

	p := table.Effective(grants, Identity{Username: "carol", Groups: []string{"auditors", "cleaners"}})

	require.NotNil(t, p)
	assert.Equal(t, []string{"delete", "read", "upload"}, p.Actions())
}

func TestEffective_PublicGrantMergesWithUserGrants(t *testing.T) {
	// An authenticated user on a public mount receives at least read plus
	// any configured extras.
	table := ProfileTable{}
	grants := Grants{
		Public: true,
		Users:  map[string]GrantSpec{"dave": NewGrantSpec("upload")},
	}

	p := table.Effective(grants, Identity{Username: "dave"})

	require.NotNil(t, p)
	assert.Equal(t, []string{"read", "upload"}, p.Actions())
}

func TestEffective_GroupOrderDoesNotMatter(t *testing.T) {
	table := ProfileTable{}
	grants := Grants{
		Groups: map[string]GrantSpec{
			"a": NewGrantSpec("read"),
			"b": NewGrantSpec("delete, rename"),
			"c": NewGrantSpec("custom"),
		},
	}

	forward := table.Effective(grants, Identity{Username: "u", Groups: []string{"a", "b", "c"}})
	reverse := table.Effective(grants, Identity{Username: "u", Groups: []string{"c", "b", "a"}})

	require.NotNil(t, forward)
	require.NotNil(t, reverse)
	assert.True(t, forward.Equal(*reverse))
}

func TestEffective_EmptyAggregateNormalizedToNil(t *testing.T) {
	table := ProfileTable{}
	grants := Grants{
		// The user spec resolves to nothing.
		Users: map[string]GrantSpec{"eve": NewGrantSpec("  ,  ")},
	}

	assert.Nil(t, table.Effective(grants, Identity{Username: "eve"}))
}

func TestEffective_ProfileGrant(t *testing.T) {
	table := NewProfileTable(map[string]Profile{
		"contributor": NewProfile(map[string]bool{"read": true, "upload": true}),
	})
	grants := Grants{
		Groups: map[string]GrantSpec{"staff": NewGrantSpec("contributor")},
	}

	p := table.Effective(grants, Identity{Username: "frank", Groups: []string{"staff"}})

	require.NotNil(t, p)
	assert.True(t, p.AllowsRead())
	assert.True(t, p.AllowsUpload())
	assert.False(t, p.AllowsDelete())
}
