package kvs

import "context"

// Backend é o meio persistente por trás do Store. Trabalha só com bytes;
// serialização, versionamento e tratamento de erro ficam no Store.
//
// Implementações não precisam oferecer atomicidade entre chaves.
type Backend interface {
	// Get devolve found=false quando a chave não existe
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete é idempotente
	Delete(ctx context.Context, key string) error
	// Clear remove todas as chaves gravadas por este backend
	Clear(ctx context.Context) error
	// MultiGet devolve um slice alinhado com keys; nil para chaves ausentes
	MultiGet(ctx context.Context, keys []string) ([][]byte, error)
	MultiSet(ctx context.Context, pairs []RawPair) error
	Ping(ctx context.Context) error
	Close() error
}

// RawPair é um par chave/valor já serializado
type RawPair struct {
	Key   string
	Value []byte
}
