package eth

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Decodes all logs named name emitted by the contract at address
func GetTransactionLogs(receipt *types.Receipt, contractABI *abi.ABI, address common.Address, name string) (events []map[string]interface{}, err error) {
	if receipt == nil {
		return
	}

	for _, vLog := range receipt.Logs {
		if vLog == nil || len(vLog.Topics) == 0 || vLog.Address != address {
			continue
		}

		event, err := contractABI.EventByID(vLog.Topics[0])
		if err != nil || event.Name != name {
			continue
		}

		eventMap := make(map[string]interface{})
		eventMap["name"] = event.Name

		indexed := make([]abi.Argument, 0)
		for _, input := range event.Inputs {
			if input.Indexed {
				indexed = append(indexed, input)
			}
		}
		err = abi.ParseTopicsIntoMap(eventMap, indexed, vLog.Topics[1:])
		if err != nil {
			return nil, err
		}

		if len(vLog.Data) > 0 {
			err = contractABI.UnpackIntoMap(eventMap, event.Name, vLog.Data)
			if err != nil {
				return nil, err
			}
		}
		events = append(events, eventMap)
	}

	return
}
