// Package mqtt connects Adaptive Cover Core to an MQTT broker.
//
// This package manages:
//   - Connection with auto-reconnect and subscription restore
//   - Last Will and Testament (LWT) on adaptivecover/system/status
//   - Retained state topics for number entities and cover positions
//   - Set-command topics that feed values back into the entity platform
//
// # Topics
//
//	adaptivecover/{entry_id}/number/{key}/state   retained {"value":0.8,...}
//	adaptivecover/{entry_id}/number/{key}/set     0.8 or {"value":0.8}
//	adaptivecover/{entry_id}/cover/state          retained coordinator data
//	adaptivecover/system/status                   retained online/offline (LWT)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	bridge := mqtt.NewBridge(client)
//	platform.AddListener(bridge)
//	coord.AddListener(bridge.PublishCoverState)
//	platform.AttachAll(ctx) // commands are only accepted once attached
//	err = bridge.SubscribeCommands(client, byte(cfg.MQTT.QoS), platform)
package mqtt
