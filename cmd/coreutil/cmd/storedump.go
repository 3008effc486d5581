package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flow-consensus/ifcore/store"
)

var flagKeyPrefix string

func init() {
	rootCmd.AddCommand(storeDumpCmd)

	storeDumpCmd.Flags().StringVar(&flagKeyPrefix, "prefix", "", "hex-encoded key prefix to restrict the dump to")
}

// storeDumpCmd walks the raw badger keyspace at --datadir, the coreutil
// equivalent of the teacher's read-badger tool for this module's own
// state store rather than flow-go's chain-state tables.
var storeDumpCmd = &cobra.Command{
	Use:   "store-dump",
	Short: "dump raw key/value pairs from the state store at --datadir",
	Run:   runStoreDump,
}

func runStoreDump(*cobra.Command, []string) {
	var prefix []byte
	if flagKeyPrefix != "" {
		p, err := hex.DecodeString(flagKeyPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("malformed --prefix, expected hex")
		}
		prefix = p
	}

	st, err := store.NewBadgerStore(flagDatadir, 1<<20)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open state store at datadir")
	}
	defer st.Close()

	count := 0
	err = st.IterateKeys(prefix, func(key, val []byte) error {
		fmt.Printf("%s = %s\n", hex.EncodeToString(key), hex.EncodeToString(val))
		count++
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("iteration failed")
	}
	log.Info().Int("count", count).Msg("store dump complete")
}
