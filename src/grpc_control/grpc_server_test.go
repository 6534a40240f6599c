package grpc_control

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/models"
	"gpu-price-tracker/src/storage"
)

func TestGRPCServerLifecycle(t *testing.T) {
	cfg := &models.MConfig{
		GrpcHost: "127.0.0.1",
		GrpcPort: 0,
		Storage:  models.MStorageConfig{SummaryDir: t.TempDir()},
	}
	store := storage.NewJSONLSeriesStore(cfg, nil)
	require.NoError(t, store.Initialize())

	var srv interfaces.IDataExchanger = NewGRPCServer(cfg, store, nil)
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	gs := srv.(*GRPCServer)
	require.Eventually(t, func() bool { return gs.ListenAddr() != nil }, 2*time.Second, 10*time.Millisecond)

	conn, err := grpc.NewClient(gs.ListenAddr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	out, err := NewTrackerQueryClient(conn).ListSeries(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Empty(t, out.Fields["series"].GetListValue().GetValues())

	require.NoError(t, srv.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
