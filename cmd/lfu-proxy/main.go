package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"strconv"
	"strings"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/mirkobrombin/go-lfu/v1/adapter"
	"github.com/mirkobrombin/go-lfu/v1/cache"
	"github.com/mirkobrombin/go-lfu/v1/core"
)

var (
	port         = flag.Int("port", 6380, "Port to listen on")
	addr         = flag.String("addr", "0.0.0.0", "Address to listen on")
	capacity     = flag.Int("capacity", 10000, "Maximum number of cached keys")
	logEvictions = flag.Bool("log-evictions", false, "Log every evicted key")
	redisAddr    = flag.String("redis", "", "Optional Redis address to read through and write to")
)

type server struct {
	cache *cache.LFUCache[[]byte]
	core  *core.Core[[]byte]
}

// newServer builds the proxy. When store is not nil, misses are loaded from
// it and writes go through to it.
func newServer(capacity int, logEvictions bool, store adapter.Store[[]byte]) (*server, error) {
	var opts []cache.LFUOption[[]byte]
	if logEvictions {
		opts = append(opts, cache.WithEvictionHook(func(key string, _ []byte) {
			log.Printf("evicted %q", key)
		}))
	}
	c, err := cache.NewLFU[[]byte](capacity, opts...)
	if err != nil {
		return nil, err
	}
	return &server{cache: c, core: core.New[[]byte](c, store)}, nil
}

func main() {
	flag.Parse()

	var store adapter.Store[[]byte]
	if *redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: *redisAddr})
		defer client.Close()
		// Values are stored raw so keys written by other clients stay readable.
		store = adapter.NewRedisStore[[]byte](client, adapter.WithCodec(adapter.ByteCodec{}))
	}

	srv, err := newServer(*capacity, *logEvictions, store)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *addr, *port))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	defer listener.Close()

	log.Printf("lfu-proxy listening on %s:%d (capacity %d)", *addr, *port, *capacity)
	if err := srv.serve(listener); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// serve accepts connections until the listener is closed.
func (s *server) serve(listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("failed to accept: %v", err)
			continue
		}
		go s.handle(conn)
	}
}

func (s *server) handle(conn net.Conn) {
	defer conn.Close()
	id := uuid.NewString()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	respReader := NewRESPReader(reader)
	respWriter := NewRESPWriter(writer)

	for {
		args, err := respReader.ReadCommand()
		if err != nil {
			if errors.Is(err, errInvalidProtocol) {
				respWriter.WriteError(err.Error())
				respWriter.Flush()
			} else if err != io.EOF {
				log.Printf("conn %s: read error: %v", id, err)
			}
			return
		}

		s.execute(respWriter, args)

		// Answer pipelined commands in one flush.
		for reader.Buffered() > 0 {
			args, err := respReader.ReadCommand()
			if err != nil {
				respWriter.Flush()
				return
			}
			s.execute(respWriter, args)
		}

		if err := respWriter.Flush(); err != nil {
			return
		}
	}
}

func (s *server) execute(w *RESPWriter, args [][]byte) {
	if len(args) == 0 {
		return
	}
	ctx := context.Background()
	cmd := strings.ToUpper(string(args[0]))

	switch cmd {
	case "GET":
		if len(args) != 2 {
			w.WriteError("ERR wrong number of arguments for 'get' command")
			return
		}
		val, err := s.core.Get(ctx, string(args[1]))
		switch {
		case errors.Is(err, core.ErrNotFound):
			w.WriteNull()
		case err != nil:
			w.WriteError("ERR " + err.Error())
		default:
			w.WriteBulk(val)
		}
	case "SET":
		if len(args) != 3 {
			w.WriteError("ERR wrong number of arguments for 'set' command")
			return
		}
		if err := s.core.Set(ctx, string(args[1]), args[2]); err != nil {
			w.WriteError("ERR " + err.Error())
			return
		}
		w.WriteSimpleString("OK")
	case "FREQ":
		if len(args) != 2 {
			w.WriteError("ERR wrong number of arguments for 'freq' command")
			return
		}
		if f, ok := s.cache.Frequency(string(args[1])); ok {
			w.WriteInt(int64(f))
		} else {
			w.WriteNull()
		}
	case "DBSIZE":
		w.WriteInt(int64(s.cache.Metrics().Size))
	case "PING":
		if len(args) > 1 {
			w.WriteBulk(args[1])
		} else {
			w.WriteSimpleString("PONG")
		}
	case "INFO":
		w.WriteBulk(s.info())
	case "COMMAND", "CLIENT":
		w.WriteSimpleString("OK")
	default:
		w.WriteError(fmt.Sprintf("ERR unknown command '%s'", cmd))
	}
}

// info renders cache statistics in the INFO format.
func (s *server) info() []byte {
	m := s.cache.Metrics()
	var b []byte
	b = append(b, "# Server\r\nlfu_proxy_version:1.0.0\r\n# Stats\r\n"...)
	b = appendField(b, "keyspace_hits", m.Hits)
	b = appendField(b, "keyspace_misses", m.Misses)
	b = appendField(b, "evicted_keys", m.Evictions)
	b = appendField(b, "keys", uint64(m.Size))
	b = appendField(b, "maxkeys", uint64(m.Capacity))
	return b
}

func appendField(b []byte, name string, v uint64) []byte {
	b = append(b, name...)
	b = append(b, ':')
	b = strconv.AppendUint(b, v, 10)
	return append(b, crlf...)
}
