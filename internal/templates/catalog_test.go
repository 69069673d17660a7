package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/survey-report/internal/failure"
	"github.com/thywilljoshua/survey-report/internal/plan"
)

func plans(t *testing.T) (plan.Plan, plan.Plan) {
	t.Helper()
	b, err := plan.For(plan.Basic)
	require.NoError(t, err)
	p, err := plan.For(plan.Premium)
	require.NoError(t, err)
	return b, p
}

func TestPathLayout(t *testing.T) {
	c := New("/tpl")
	cases := map[Key]string{
		{Variant: plan.Basic, Role: RoleCover}:                                   "/tpl/basic/1.pdf",
		{Variant: plan.Basic, Role: RoleContent, Block: 1}:                       "/tpl/basic/4.pdf",
		{Variant: plan.Basic, Role: RoleContent, Block: 9}:                       "/tpl/basic/5.pdf",
		{Variant: plan.Basic, Role: RoleClosing, Block: 1}:                       "/tpl/basic/7.pdf",
		{Variant: plan.Premium, Role: RoleCover}:                                 "/tpl/premium/cover.pdf",
		{Variant: plan.Premium, Section: "thinking", Role: RoleDivider}:          "/tpl/premium/thinking/divider-1.pdf",
		{Variant: plan.Premium, Section: "thinking", Role: RoleNote}:             "/tpl/premium/thinking/notes.pdf",
		{Variant: plan.Premium, Section: "thinking", Role: RoleContent}:          "/tpl/premium/thinking/content.pdf",
		{Variant: plan.Premium, Section: "roadmap", Role: RoleTitle}:             "/tpl/premium/roadmap/title.pdf",
		{Variant: plan.Premium, Section: "roadmap", Role: RoleDivider, Block: 3}: "/tpl/premium/roadmap/divider-4.pdf",
	}
	for k, want := range cases {
		got, err := c.Path(k)
		require.NoError(t, err, k.String())
		assert.Equal(t, filepath.FromSlash(want), got)
	}

	_, err := c.Path(Key{Variant: plan.Basic, Role: RoleClosing, Block: 2})
	assert.Error(t, err)
	_, err = c.Path(Key{Variant: plan.Premium, Role: RoleNote})
	assert.Error(t, err)
}

func TestKeysCount(t *testing.T) {
	b, p := plans(t)
	assert.Len(t, Keys(b), 7)

	want := 3 // cover, title, closing
	for _, s := range p.Sections {
		want += 3 + len(s.Subsections)
	}
	assert.Len(t, Keys(p), want)
}

func TestValidateReportsMissingTemplates(t *testing.T) {
	b, _ := plans(t)
	dir := t.TempDir()
	err := New(dir).Validate(b)
	require.Error(t, err)
	assert.Equal(t, failure.KindMissingTemplate, failure.KindOf(err))

	created, err := Scaffold(dir, b)
	require.NoError(t, err)
	assert.Len(t, created, 7)
	require.NoError(t, New(dir).Validate(b))

	require.NoError(t, os.Remove(filepath.Join(dir, "basic", "6.pdf")))
	err = New(dir).Validate(b)
	var mt *failure.MissingTemplateError
	require.ErrorAs(t, err, &mt)
	assert.Equal(t, "basic/closing#0", mt.Key)
}

func TestScaffoldIsIdempotentAndReadable(t *testing.T) {
	b, p := plans(t)
	dir := t.TempDir()
	_, err := Scaffold(dir, b, p)
	require.NoError(t, err)

	again, err := Scaffold(dir, b, p)
	require.NoError(t, err)
	assert.Empty(t, again)

	for _, k := range Keys(p) {
		path, err := New(dir).Resolve(k)
		require.NoError(t, err)
		n, err := PageCount(path)
		require.NoError(t, err, path)
		assert.Equal(t, 1, n, path)
	}
}

func TestPageCountRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))
	_, err := PageCount(path)
	assert.Error(t, err)
}
