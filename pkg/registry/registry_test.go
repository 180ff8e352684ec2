package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/filegate/pkg/access"
	"github.com/marmos91/filegate/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()

	return &config.Config{
		Users: map[string]config.UserConfig{
			"alice": {Password: "secret", Algorithm: "plain", Groups: []string{"editors"}},
			"bob":   {Password: "secret", Algorithm: "plain"},
		},
		Mounts: map[string]config.MountConfig{
			"docs": {
				Path:   filepath.Join(tmpDir, "docs"),
				Public: true,
			},
			"private": {
				Path: filepath.Join(tmpDir, "private"),
				Users: map[string]access.GrantSpec{
					"alice": access.NewGrantSpec("editor"),
				},
				Groups: map[string]access.GrantSpec{
					"editors": access.NewGrantSpec("upload"),
				},
			},
		},
		Profiles: map[string]access.Profile{
			"editor": access.NewProfile(map[string]bool{"read": true, "write": true}),
		},
	}
}

func TestBuild_CanonicalizesRoots(t *testing.T) {
	cfg := testConfig(t)

	reg, err := Build(cfg)
	require.NoError(t, err)

	mount, err := reg.GetMount("docs")
	require.NoError(t, err)

	// The root directory must exist after building
	info, err := os.Stat(mount.Root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.True(t, filepath.IsAbs(mount.Root))
}

func TestBuild_FailsOnBadRoot(t *testing.T) {
	tmpDir := t.TempDir()

	// A root that points at a regular file cannot be canonicalized
	filePath := filepath.Join(tmpDir, "not-a-dir")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))

	cfg := testConfig(t)
	cfg.Mounts["broken"] = config.MountConfig{Path: filePath}

	_, err := Build(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestGetMount_Unknown(t *testing.T) {
	reg, err := Build(testConfig(t))
	require.NoError(t, err)

	_, err = reg.GetMount("nope")
	assert.Error(t, err)
	assert.False(t, reg.MountExists("nope"))
}

func TestListMounts_Sorted(t *testing.T) {
	reg, err := Build(testConfig(t))
	require.NoError(t, err)

	mounts := reg.ListMounts()
	require.Len(t, mounts, 2)
	assert.Equal(t, "docs", mounts[0].Name)
	assert.Equal(t, "private", mounts[1].Name)
}

func TestIdentity_Groups(t *testing.T) {
	reg, err := Build(testConfig(t))
	require.NoError(t, err)

	alice := reg.Identity("alice")
	assert.Equal(t, "alice", alice.Username)
	assert.Equal(t, []string{"editors"}, alice.Groups)

	anon := reg.Identity("")
	assert.True(t, anon.IsAnonymous())

	// Unknown users still get a non-anonymous identity with no groups
	ghost := reg.Identity("ghost")
	assert.Equal(t, "ghost", ghost.Username)
	assert.Empty(t, ghost.Groups)
}

func TestEffective_PublicMount(t *testing.T) {
	reg, err := Build(testConfig(t))
	require.NoError(t, err)

	perm := reg.Effective("docs", access.Identity{})
	require.NotNil(t, perm)
	assert.True(t, perm.AllowsRead())
	assert.False(t, perm.AllowsWrite())
}

func TestEffective_UserAndGroupGrantsMerge(t *testing.T) {
	reg, err := Build(testConfig(t))
	require.NoError(t, err)

	perm := reg.Effective("private", reg.Identity("alice"))
	require.NotNil(t, perm)

	// "editor" profile gives read and write, the editors group adds upload
	assert.True(t, perm.AllowsRead())
	assert.True(t, perm.AllowsWrite())
	assert.True(t, perm.AllowsUpload())
}

func TestEffective_NoAccess(t *testing.T) {
	reg, err := Build(testConfig(t))
	require.NoError(t, err)

	assert.Nil(t, reg.Effective("private", access.Identity{}))
	assert.Nil(t, reg.Effective("private", reg.Identity("bob")))
	assert.Nil(t, reg.Effective("unknown", reg.Identity("alice")))
}

func TestVisible(t *testing.T) {
	reg, err := Build(testConfig(t))
	require.NoError(t, err)

	anon := reg.Visible(access.Identity{})
	require.Len(t, anon, 1)
	assert.Equal(t, "docs", anon[0].Name)

	alice := reg.Visible(reg.Identity("alice"))
	require.Len(t, alice, 2)
}
