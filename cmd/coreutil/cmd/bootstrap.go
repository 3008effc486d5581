package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/policy"
	"github.com/flow-consensus/ifcore/stage"
	"github.com/flow-consensus/ifcore/store"
)

const genesisFileName = "genesis.json"

var (
	flagRegime        string
	flagChainID       string
	flagGenesisOutDir string
	flagFinalizerFile string
	flagProducerFile  string
)

func init() {
	rootCmd.AddCommand(bootstrapCmd)

	bootstrapCmd.Flags().StringVar(&flagRegime, "regime", "dpos", "genesis regime: dpos or if")
	bootstrapCmd.Flags().StringVar(&flagChainID, "chain-id", "", "hex-encoded 32-byte chain id; generated if empty")
	bootstrapCmd.Flags().StringVar(&flagGenesisOutDir, "out-dir", ".", "directory to write genesis.json into")
	bootstrapCmd.Flags().StringVar(&flagFinalizerFile, "finalizer-policy-file", "", "JSON file with the genesis finalizer policy (IF regime)")
	bootstrapCmd.Flags().StringVar(&flagProducerFile, "producer-schedule-file", "", "JSON file with the genesis producer schedule (DPoS regime)")
}

// genesisDescriptor is the on-disk shape written by bootstrap and read
// back by the rest of the tool suite; it is the coreutil-local equivalent
// of the teacher's root-protocol-state-snapshot.json.
type genesisDescriptor struct {
	ChainID       chain.Identifier   `json:"chain_id"`
	Regime        stage.Regime       `json:"regime"`
	Header        chain.Header       `json:"header"`
	GenesisPolicy policy.Policy      `json:"genesis_policy,omitempty"`
	Producers     stage.ProducerView `json:"producers,omitempty"`
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "create a genesis block descriptor and an empty state store at --datadir",
	Run:   runBootstrap,
}

func runBootstrap(*cobra.Command, []string) {
	var regime stage.Regime
	switch flagRegime {
	case "dpos":
		regime = stage.RegimeDPoS
	case "if":
		regime = stage.RegimeIF
	default:
		log.Fatal().Str("regime", flagRegime).Msg("unknown regime, expected dpos or if")
	}

	chainID, err := resolveChainID(flagChainID)
	if err != nil {
		log.Fatal().Err(err).Msg("could not resolve chain id")
	}

	genesisHeader := chain.Header{
		ParentID:  chain.ZeroID,
		Height:    0,
		Timestamp: time.Now().UTC(),
	}

	desc := genesisDescriptor{
		ChainID: chainID,
		Regime:  regime,
		Header:  genesisHeader,
	}

	switch regime {
	case stage.RegimeIF:
		pol, err := loadFinalizerPolicy(flagFinalizerFile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load genesis finalizer policy")
		}
		desc.GenesisPolicy = pol
	case stage.RegimeDPoS:
		view, err := loadProducerSchedule(flagProducerFile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load genesis producer schedule")
		}
		desc.Producers = view
	}

	st, err := store.NewBadgerStore(flagDatadir, 1<<20)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open state store at datadir")
	}
	defer st.Close()

	if err := st.Set([]byte("__chain_id__"), chainID[:]); err != nil {
		log.Fatal().Err(err).Msg("could not record chain id in state store")
	}

	outPath := filepath.Join(flagGenesisOutDir, genesisFileName)
	f, err := os.Create(outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create genesis descriptor file")
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(desc); err != nil {
		log.Fatal().Err(err).Msg("could not write genesis descriptor")
	}

	log.Info().Str("chain_id", chainID.String()).Str("out", outPath).Str("datadir", flagDatadir).Msg("genesis bootstrap complete")
}

func resolveChainID(hexID string) (chain.Identifier, error) {
	if hexID == "" {
		return chain.MakeID(time.Now()), nil
	}
	return chain.HexStringToIdentifier(hexID)
}

func loadFinalizerPolicy(path string) (policy.Policy, error) {
	if path == "" {
		return policy.Policy{}, fmt.Errorf("--finalizer-policy-file is required for the if regime")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return policy.Policy{}, err
	}
	var pol policy.Policy
	if err := json.Unmarshal(b, &pol); err != nil {
		return policy.Policy{}, err
	}
	return pol, nil
}

func loadProducerSchedule(path string) (stage.ProducerView, error) {
	if path == "" {
		return stage.ProducerView{}, fmt.Errorf("--producer-schedule-file is required for the dpos regime")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return stage.ProducerView{}, err
	}
	var view stage.ProducerView
	if err := json.Unmarshal(b, &view); err != nil {
		return stage.ProducerView{}, err
	}
	return view, nil
}
