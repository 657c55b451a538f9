package protocol

import "fmt"

// Code identifies a message type. Client messages are below 100, server
// messages from 100, and server errors from 900.
type Code int

// Client to server.
const (
	CLPing                Code = 0
	CLIAm                 Code = 1
	CLLocation            Code = 10
	CLCancelAction        Code = 20
	CLCraft               Code = 21
	CLConstruct           Code = 23
	CLGather              Code = 24
	CLDrop                Code = 30
	CLSwapItems           Code = 31
	CLTakeItem            Code = 32
	CLStartWatching       Code = 40
	CLStopWatching        Code = 41
	CLTargetEntity        Code = 50
	CLTargetPlayer        Code = 51
	CLPerformObjectAction Code = 60
	CLTakeTalent          Code = 70
	CLUnlearnTalents      Code = 71
	CLSay                 Code = 90
	CLWhisper             Code = 91
)

// Server to client.
const (
	SVPingReply          Code = 100
	SVWelcome            Code = 101
	SVUserDisconnected   Code = 110
	SVUserOutOfRange     Code = 111
	SVObjectOutOfRange   Code = 112
	SVLocation           Code = 121
	SVLocationInstant    Code = 122
	SVInventory          Code = 123
	SVObject             Code = 124
	SVRemoveObject       Code = 125
	SVEntityHealth       Code = 127
	SVTransformTime      Code = 129
	SVActionStarted      Code = 130
	SVActionFinished     Code = 131
	SVRecipes            Code = 134
	SVNewRecipes         Code = 135
	SVConstructions      Code = 136
	SVNewConstructions   Code = 137
	SVEntityHitPlayer    Code = 140
	SVPlayerHitEntity    Code = 141
	SVPlayerHitPlayer    Code = 142
	SVGatheringObject    Code = 151
	SVNotGatheringObject Code = 152
	SVLootable           Code = 153
	SVNotLootable        Code = 154
	SVPlayerHealth       Code = 160
	SVYourStats          Code = 161
	SVPlayerEnergy       Code = 162
	SVTalent             Code = 170
	SVNoTalents          Code = 171
	SVEntityGotBuff      Code = 181
	SVEntityGotDebuff    Code = 182
	SVEntityLostBuff     Code = 183
	SVEntityLostDebuff   Code = 184
	SVShowMissAt         Code = 185
	SVShowDodgeAt        Code = 186
	SVShowCritAt         Code = 187
	SVShowBlockAt        Code = 188
	SVEntityWasHit       Code = 189
	SVUnlockHint         Code = 190
	SVSay                Code = 200
	SVWhisper            Code = 201
	SVObjectAction       Code = 202
)

// Server errors.
const (
	SVDuplicateUsername   Code = 900
	SVInvalidUsername     Code = 901
	SVServerFull          Code = 902
	SVInvalidUser         Code = 903
	SVWrongVersion        Code = 904
	SVWrongPassword       Code = 905
	SVTooFar              Code = 910
	SVDoesntExist         Code = 911
	SVInventoryFull       Code = 912
	SVNeedMaterials       Code = 913
	SVInvalidItem         Code = 914
	SVCannotCraft         Code = 915
	SVActionInterrupted   Code = 916
	SVEmptySlot           Code = 917
	SVInvalidSlot         Code = 918
	SVCannotConstruct     Code = 919
	SVBlocked             Code = 921
	SVNeedTools           Code = 922
	SVTargetDead          Code = 932
	SVUnknownRecipe       Code = 939
	SVUnknownConstruction Code = 940
	SVNoAction            Code = 953
	SVInvalidTalent       Code = 960
	SVNoTalentPoints      Code = 961
)

func (c Code) IsClient() bool {
	return c >= 0 && c < 100
}

func (c Code) IsError() bool {
	return c >= 900
}

var codeNames = map[Code]string{
	CLPing:                "CL_PING",
	CLIAm:                 "CL_I_AM",
	CLLocation:            "CL_LOCATION",
	CLCancelAction:        "CL_CANCEL_ACTION",
	CLCraft:               "CL_CRAFT",
	CLConstruct:           "CL_CONSTRUCT",
	CLGather:              "CL_GATHER",
	CLDrop:                "CL_DROP",
	CLSwapItems:           "CL_SWAP_ITEMS",
	CLTakeItem:            "CL_TAKE_ITEM",
	CLStartWatching:       "CL_START_WATCHING",
	CLStopWatching:        "CL_STOP_WATCHING",
	CLTargetEntity:        "CL_TARGET_ENTITY",
	CLTargetPlayer:        "CL_TARGET_PLAYER",
	CLPerformObjectAction: "CL_PERFORM_OBJECT_ACTION",
	CLTakeTalent:          "CL_TAKE_TALENT",
	CLUnlearnTalents:      "CL_UNLEARN_TALENTS",
	CLSay:                 "CL_SAY",
	CLWhisper:             "CL_WHISPER",
	SVPingReply:           "SV_PING_REPLY",
	SVWelcome:             "SV_WELCOME",
	SVUserDisconnected:    "SV_USER_DISCONNECTED",
	SVUserOutOfRange:      "SV_USER_OUT_OF_RANGE",
	SVObjectOutOfRange:    "SV_OBJECT_OUT_OF_RANGE",
	SVLocation:            "SV_LOCATION",
	SVLocationInstant:     "SV_LOCATION_INSTANT",
	SVInventory:           "SV_INVENTORY",
	SVObject:              "SV_OBJECT",
	SVRemoveObject:        "SV_REMOVE_OBJECT",
	SVEntityHealth:        "SV_ENTITY_HEALTH",
	SVTransformTime:       "SV_TRANSFORM_TIME",
	SVActionStarted:       "SV_ACTION_STARTED",
	SVActionFinished:      "SV_ACTION_FINISHED",
	SVRecipes:             "SV_RECIPES",
	SVNewRecipes:          "SV_NEW_RECIPES",
	SVConstructions:       "SV_CONSTRUCTIONS",
	SVNewConstructions:    "SV_NEW_CONSTRUCTIONS",
	SVEntityHitPlayer:     "SV_ENTITY_HIT_PLAYER",
	SVPlayerHitEntity:     "SV_PLAYER_HIT_ENTITY",
	SVPlayerHitPlayer:     "SV_PLAYER_HIT_PLAYER",
	SVGatheringObject:     "SV_GATHERING_OBJECT",
	SVNotGatheringObject:  "SV_NOT_GATHERING_OBJECT",
	SVLootable:            "SV_LOOTABLE",
	SVNotLootable:         "SV_NOT_LOOTABLE",
	SVPlayerHealth:        "SV_PLAYER_HEALTH",
	SVYourStats:           "SV_YOUR_STATS",
	SVPlayerEnergy:        "SV_PLAYER_ENERGY",
	SVTalent:              "SV_TALENT",
	SVNoTalents:           "SV_NO_TALENTS",
	SVEntityGotBuff:       "SV_ENTITY_GOT_BUFF",
	SVEntityGotDebuff:     "SV_ENTITY_GOT_DEBUFF",
	SVEntityLostBuff:      "SV_ENTITY_LOST_BUFF",
	SVEntityLostDebuff:    "SV_ENTITY_LOST_DEBUFF",
	SVShowMissAt:          "SV_SHOW_MISS_AT",
	SVShowDodgeAt:         "SV_SHOW_DODGE_AT",
	SVShowCritAt:          "SV_SHOW_CRIT_AT",
	SVShowBlockAt:         "SV_SHOW_BLOCK_AT",
	SVEntityWasHit:        "SV_ENTITY_WAS_HIT",
	SVUnlockHint:          "SV_UNLOCK_HINT",
	SVSay:                 "SV_SAY",
	SVWhisper:             "SV_WHISPER",
	SVObjectAction:        "SV_OBJECT_ACTION",
	SVDuplicateUsername:   "SV_DUPLICATE_USERNAME",
	SVInvalidUsername:     "SV_INVALID_USERNAME",
	SVServerFull:          "SV_SERVER_FULL",
	SVInvalidUser:         "SV_INVALID_USER",
	SVWrongVersion:        "SV_WRONG_VERSION",
	SVWrongPassword:       "SV_WRONG_PASSWORD",
	SVTooFar:              "SV_TOO_FAR",
	SVDoesntExist:         "SV_DOESNT_EXIST",
	SVInventoryFull:       "SV_INVENTORY_FULL",
	SVNeedMaterials:       "SV_NEED_MATERIALS",
	SVInvalidItem:         "SV_INVALID_ITEM",
	SVCannotCraft:         "SV_CANNOT_CRAFT",
	SVActionInterrupted:   "SV_ACTION_INTERRUPTED",
	SVEmptySlot:           "SV_EMPTY_SLOT",
	SVInvalidSlot:         "SV_INVALID_SLOT",
	SVCannotConstruct:     "SV_CANNOT_CONSTRUCT",
	SVBlocked:             "SV_BLOCKED",
	SVNeedTools:           "SV_NEED_TOOLS",
	SVTargetDead:          "SV_TARGET_DEAD",
	SVUnknownRecipe:       "SV_UNKNOWN_RECIPE",
	SVUnknownConstruction: "SV_UNKNOWN_CONSTRUCTION",
	SVNoAction:            "SV_NO_ACTION",
	SVInvalidTalent:       "SV_INVALID_TALENT",
	SVNoTalentPoints:      "SV_NO_TALENT_POINTS",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("code(%d)", int(c))
}
