package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method string
	Params map[string]any
}

// fakeCaller records every call and answers from scripted JSON per method.
type fakeCaller struct {
	calls   []recordedCall
	results map[string]string
	errs    map[string]error
}

func (f *fakeCaller) Call(_ context.Context, method string, params any, out any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	var p map[string]any
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	f.calls = append(f.calls, recordedCall{Method: method, Params: p})

	if err, ok := f.errs[method]; ok {
		return err
	}
	if res, ok := f.results[method]; ok && out != nil {
		return json.Unmarshal([]byte(res), out)
	}
	return nil
}

func (f *fakeCaller) last(t *testing.T) recordedCall {
	t.Helper()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func TestListBuildsStagedFilterParams(t *testing.T) {
	t.Parallel()

	fake := &fakeCaller{results: map[string]string{
		methodList: `{"items":[{"id":"bioimage-io/unet","manifest":{"status":"request-review"}}],"total":41}`,
	}}
	c := NewClient(fake)

	page, err := c.List(context.Background(), ListQuery{
		Parent:   "bioimage-io/bioimage.io",
		Version:  VersionStaged,
		Manifest: map[string]any{"status": StatusRequestReview},
		Limit:    10,
		Offset:   20,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, 41, page.Total)
	require.Equal(t, "unet", page.Items[0].DisplayID())

	call := fake.last(t)
	require.Equal(t, methodList, call.Method)
	require.Equal(t, "bioimage-io/bioimage.io", call.Params["parent_id"])
	require.Equal(t, true, call.Params["pagination"])
	require.EqualValues(t, 10, call.Params["limit"])
	require.EqualValues(t, 20, call.Params["offset"])

	filters, ok := call.Params["filters"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, VersionStaged, filters["version"])
	require.Equal(t, map[string]any{"status": StatusRequestReview}, filters["manifest"])
}

func TestListOmitsManifestFilterWhenEmpty(t *testing.T) {
	t.Parallel()

	fake := &fakeCaller{results: map[string]string{methodList: `{"items":[],"total":0}`}}
	c := NewClient(fake)

	_, err := c.List(context.Background(), ListQuery{Parent: "p", Version: VersionStaged})
	require.NoError(t, err)

	filters := fake.last(t).Params["filters"].(map[string]any)
	require.NotContains(t, filters, "manifest")
	require.Equal(t, VersionStaged, filters["version"])
}

func TestReadPassesVersionOnlyWhenSet(t *testing.T) {
	t.Parallel()

	fake := &fakeCaller{results: map[string]string{
		methodRead: `{"id":"bioimage-io/unet","manifest":{"name":"UNet"}}`,
	}}
	c := NewClient(fake)

	a, err := c.Read(context.Background(), "bioimage-io/unet", "")
	require.NoError(t, err)
	require.Equal(t, "UNet", a.Manifest.Name())
	require.NotContains(t, fake.last(t).Params, "version")

	_, err = c.Read(context.Background(), "bioimage-io/unet", VersionStaged)
	require.NoError(t, err)
	require.Equal(t, VersionStaged, fake.last(t).Params["version"])
}

func TestMutationParamShapes(t *testing.T) {
	t.Parallel()

	fake := &fakeCaller{}
	c := NewClient(fake)
	ctx := context.Background()

	require.NoError(t, c.Approve(ctx, "ws/m1"))
	call := fake.last(t)
	require.Equal(t, methodApprove, call.Method)
	require.Equal(t, "ws/m1", call.Params["artifact_id"])

	require.NoError(t, c.Reject(ctx, "ws/m1", "missing sample data"))
	call = fake.last(t)
	require.Equal(t, methodReject, call.Method)
	require.Equal(t, "missing sample data", call.Params["reason"])

	require.NoError(t, c.Delete(ctx, "ws/m1", DeleteOptions{Version: VersionStaged, DeleteFiles: true, Recursive: true}))
	call = fake.last(t)
	require.Equal(t, methodDelete, call.Method)
	require.Equal(t, VersionStaged, call.Params["version"])
	require.Equal(t, true, call.Params["delete_files"])
	require.Equal(t, true, call.Params["recursive"])

	m := Manifest{"name": "UNet", "status": StatusAccepted}
	require.NoError(t, c.Edit(ctx, "ws/m1", m, VersionStaged))
	call = fake.last(t)
	require.Equal(t, methodEdit, call.Method)
	require.Equal(t, VersionStaged, call.Params["version"])
	manifest, ok := call.Params["manifest"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, StatusAccepted, manifest["status"])
}

func TestDeleteWholeArtifactOmitsVersion(t *testing.T) {
	t.Parallel()

	fake := &fakeCaller{}
	c := NewClient(fake)

	require.NoError(t, c.Delete(context.Background(), "ws/m1", DeleteOptions{DeleteFiles: true, Recursive: true}))
	require.NotContains(t, fake.last(t).Params, "version")
}

func TestCallErrorsAreWrappedWithContext(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	fake := &fakeCaller{errs: map[string]error{methodApprove: boom}}
	c := NewClient(fake)

	err := c.Approve(context.Background(), "ws/m1")
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "ws/m1")
}
